package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/prodsynth/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
	Path    string `json:"path"`
}

// Delete soft-deletes a ledger entry. The dataset file is left in place.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	id, err := ValidateID(input.ID)
	if err != nil {
		return nil, err
	}

	// Verify it exists (GetByID returns ErrNotFound if not)
	r, err := db.GetByID(ctx, database, id, false)
	if err != nil {
		return nil, err
	}

	if err := db.SoftDelete(ctx, database, id); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      id,
		Path:    r.Path,
	}, nil
}
