package handler

import (
	"net/http"

	"github.com/forgo/reginald/internal/model"
	"github.com/forgo/reginald/internal/service"
)

// ChannelHandler handles channel configuration and profile endpoints
type ChannelHandler struct {
	channelService *service.ChannelService
}

// NewChannelHandler creates a new channel handler
func NewChannelHandler(channelService *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{
		channelService: channelService,
	}
}

// ConfigureChannel handles PUT /v1/channels/{channelId} - store settings
func (h *ChannelHandler) ConfigureChannel(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("channelId")
	if channelID == "" {
		WriteError(w, model.NewBadRequestError("channel ID required"))
		return
	}

	var req model.ConfigureChannelRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	req.ChannelID = channelID
	if req.ConfiguredBy == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "configured_by", Message: "configured_by is required"},
		}))
		return
	}

	cfg, err := h.channelService.ConfigureChannel(r.Context(), &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, cfg, nil)
}

// GetChannel handles GET /v1/channels/{channelId} - read settings
func (h *ChannelHandler) GetChannel(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("channelId")
	if channelID == "" {
		WriteError(w, model.NewBadRequestError("channel ID required"))
		return
	}

	cfg, err := h.channelService.GetConfig(r.Context(), channelID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, cfg, nil)
}

// CreateProfile handles POST /v1/profiles - register an event profile
func (h *ChannelHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var profile model.EventProfile
	if err := DecodeJSON(r, &profile); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	created, err := h.channelService.CreateProfile(r.Context(), &profile)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, created, nil)
}

// ListProfiles handles GET /v1/profiles - list event profiles
func (h *ChannelHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.channelService.ListProfiles(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, profiles, nil)
}
