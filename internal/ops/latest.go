package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/prodsynth/internal/db"
)

// LatestInput contains parameters for the Latest operation.
type LatestInput struct {
	IncludeDeleted bool
}

// LatestOutput contains the result of the Latest operation.
type LatestOutput struct {
	Item *RunDetail `json:"item"` // nil if the ledger is empty
}

// Latest retrieves the most recent run.
func Latest(ctx context.Context, database *sql.DB, input LatestInput) (*LatestOutput, error) {
	r, err := db.GetLatest(ctx, database, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return &LatestOutput{Item: nil}, nil
	}
	return &LatestOutput{Item: newRunDetail(r)}, nil
}
