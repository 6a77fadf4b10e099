package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"edufunkids/internal/database"
)

// ErrProfileNotFound is returned when a user has no stored profile document
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore reads and writes per-user profile documents. Update field paths
// use dotted notation ("gameProgress.mewarnai") and overwrite only the
// addressed subtree.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (map[string]any, error)
	Set(ctx context.Context, userID string, doc map[string]any) error
	Update(ctx context.Context, userID string, fields map[string]any) error
	Delete(ctx context.Context, userID string) error
}

// ProfileRow is a stored document as exported by backups
type ProfileRow struct {
	UserID    string          `json:"userId"`
	Document  json.RawMessage `json:"document"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ProfileRepository stores profile documents as JSON in the profiles table
type ProfileRepository struct {
	db database.DBTX
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type txBeginner interface {
	BeginTx(ctx context.Context) (*database.Tx, error)
}

// Get loads a user's profile document
func (r *ProfileRepository) Get(ctx context.Context, userID string) (map[string]any, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, "SELECT document FROM profiles WHERE user_id = ?", userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// Set replaces a user's whole profile document
func (r *ProfileRepository) Set(ctx context.Context, userID string, doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return r.write(ctx, userID, raw, time.Now().UTC())
}

func (r *ProfileRepository) write(ctx context.Context, userID string, raw []byte, updatedAt time.Time) error {
	query := r.db.GetDialect().UpsertProfileQuery()
	if _, err := r.db.ExecContext(ctx, query, userID, string(raw), updatedAt); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Update merges the given dotted field paths into the stored document. The
// read and write run in one transaction when the repository is not already
// bound to one.
func (r *ProfileRepository) Update(ctx context.Context, userID string, fields map[string]any) error {
	beginner, ok := r.db.(txBeginner)
	if !ok {
		return r.update(ctx, userID, fields)
	}

	tx, err := beginner.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := NewProfileRepository(tx).update(ctx, userID, fields); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile update: %w", err)
	}
	return nil
}

func (r *ProfileRepository) update(ctx context.Context, userID string, fields map[string]any) error {
	doc, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := ApplyFields(doc, fields); err != nil {
		return err
	}
	return r.Set(ctx, userID, doc)
}

// ApplyFields writes each value at its dotted path, creating intermediate
// objects and replacing non-object values on the way
func ApplyFields(doc map[string]any, fields map[string]any) error {
	for path, value := range fields {
		keys := strings.Split(path, ".")
		for _, k := range keys {
			if k == "" {
				return fmt.Errorf("invalid field path %q", path)
			}
		}

		// Round-trip through JSON so the stored tree holds plain maps and slices
		normalized, err := normalize(value)
		if err != nil {
			return fmt.Errorf("failed to encode field %q: %w", path, err)
		}

		node := doc
		for _, k := range keys[:len(keys)-1] {
			child, ok := node[k].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[k] = child
			}
			node = child
		}
		node[keys[len(keys)-1]] = normalized
	}
	return nil
}

func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a user's profile document
func (r *ProfileRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM profiles WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

// List returns every stored profile document
func (r *ProfileRepository) List(ctx context.Context) ([]ProfileRow, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT user_id, document, updated_at FROM profiles ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []ProfileRow
	for rows.Next() {
		var row ProfileRow
		var raw []byte
		if err := rows.Scan(&row.UserID, &raw, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		row.Document = json.RawMessage(raw)
		profiles = append(profiles, row)
	}
	return profiles, rows.Err()
}

// Restore writes a backed-up document, keeping its timestamp
func (r *ProfileRepository) Restore(ctx context.Context, row ProfileRow) error {
	if !json.Valid(row.Document) {
		return fmt.Errorf("profile %s: document is not valid JSON", row.UserID)
	}
	return r.write(ctx, row.UserID, row.Document, row.UpdatedAt)
}
