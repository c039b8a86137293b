package handler

import (
	"net/http"

	"github.com/forgo/reginald/internal/model"
	"github.com/forgo/reginald/internal/service"
)

// InquiryHandler handles free-text question endpoints
type InquiryHandler struct {
	inquiryService *service.InquiryService
}

// NewInquiryHandler creates a new inquiry handler
func NewInquiryHandler(inquiryService *service.InquiryService) *InquiryHandler {
	return &InquiryHandler{
		inquiryService: inquiryService,
	}
}

// Ask handles POST /v1/inquiries - answer a question about upcoming events
func (h *InquiryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Text   string `json:"text"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.UserID == "" || req.Text == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "user_id", Message: "user_id and text are required"},
		}))
		return
	}

	reply, err := h.inquiryService.Answer(r.Context(), req.UserID, req.Text)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
