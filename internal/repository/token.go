package repository

import (
	"context"
	"errors"

	"github.com/forgo/reginald/internal/database"
	"github.com/forgo/reginald/internal/model"
)

const tokenTable = "google_token"

// TokenRepository handles calendar OAuth token storage, keyed by user ID.
type TokenRepository struct {
	db database.Database
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db database.Database) *TokenRepository {
	return &TokenRepository{db: db}
}

// Get retrieves a user's stored token. Returns (nil, nil) when the user has
// never connected a calendar.
func (r *TokenRepository) Get(ctx context.Context, userID string) (*model.GoogleToken, error) {
	query := `SELECT * FROM type::thing($table, $user_id)`
	vars := map[string]interface{}{
		"table":   tokenTable,
		"user_id": userID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseTokenResult(result)
}

// Save writes a user's token, replacing any previous one.
func (r *TokenRepository) Save(ctx context.Context, token *model.GoogleToken) error {
	query := `UPSERT type::thing($table, $user_id) CONTENT $content`
	vars := map[string]interface{}{
		"table":   tokenTable,
		"user_id": token.UserID,
		"content": map[string]interface{}{
			"access_token":  token.AccessToken,
			"refresh_token": token.RefreshToken,
			"token_type":    token.TokenType,
			"expiry":        token.Expiry,
		},
	}

	return r.db.Execute(ctx, query, vars)
}

// Delete removes a user's stored token
func (r *TokenRepository) Delete(ctx context.Context, userID string) error {
	query := `DELETE type::thing($table, $user_id)`
	vars := map[string]interface{}{
		"table":   tokenTable,
		"user_id": userID,
	}

	return r.db.Execute(ctx, query, vars)
}

func parseTokenResult(result interface{}) (*model.GoogleToken, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	token := &model.GoogleToken{
		UserID:       bareRecordID(convertSurrealID(data["id"]), tokenTable),
		AccessToken:  getString(data, "access_token"),
		RefreshToken: getString(data, "refresh_token"),
		TokenType:    getString(data, "token_type"),
	}
	if t := getTime(data, "expiry"); t != nil {
		token.Expiry = *t
	}

	return token, nil
}
