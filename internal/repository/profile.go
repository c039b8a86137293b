package repository

import (
	"context"
	"errors"

	"github.com/forgo/reginald/internal/database"
	"github.com/forgo/reginald/internal/model"
)

const profileTable = "event_profile"

// ProfileRepository handles event profile data access. Profiles are keyed by
// their name.
type ProfileRepository struct {
	db database.Database
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db database.Database) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get retrieves an event profile by name. Returns (nil, nil) when the
// profile does not exist.
func (r *ProfileRepository) Get(ctx context.Context, name string) (*model.EventProfile, error) {
	query := `SELECT * FROM type::thing($table, $name)`
	vars := map[string]interface{}{
		"table": profileTable,
		"name":  name,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseProfileResult(result)
}

// List retrieves every event profile ordered by name.
func (r *ProfileRepository) List(ctx context.Context) ([]*model.EventProfile, error) {
	query := `SELECT * FROM event_profile ORDER BY id ASC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	profiles := make([]*model.EventProfile, 0)
	if items, ok := extractQueryResults(result); ok {
		for _, item := range items {
			profile, err := parseProfileResult(item)
			if err != nil {
				continue
			}
			profiles = append(profiles, profile)
		}
	}

	return profiles, nil
}

// Upsert writes an event profile, creating it if absent.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *model.EventProfile) error {
	query := `UPSERT type::thing($table, $name) CONTENT $content`
	vars := map[string]interface{}{
		"table": profileTable,
		"name":  profile.Name,
		"content": map[string]interface{}{
			"category":         profile.Category,
			"capacity_unit":    profile.CapacityUnit,
			"default_location": profile.DefaultLocation,
			"venue_code":       profile.VenueCode,
			"default_capacity": profile.DefaultCapacity,
		},
	}

	return r.db.Execute(ctx, query, vars)
}

func parseProfileResult(result interface{}) (*model.EventProfile, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	return &model.EventProfile{
		Name:            bareRecordID(convertSurrealID(data["id"]), profileTable),
		Category:        getString(data, "category"),
		CapacityUnit:    getString(data, "capacity_unit"),
		DefaultLocation: getString(data, "default_location"),
		VenueCode:       getString(data, "venue_code"),
		DefaultCapacity: getInt(data, "default_capacity"),
	}, nil
}
