package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/prodsynth/internal/dataset"
	"github.com/hpungsan/prodsynth/internal/db"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string
	IncludeDeleted bool
}

// RunDetail is a run with its summary.
type RunDetail struct {
	dataset.RunItem
	Summary dataset.Summary `json:"summary"`
}

// newRunDetail flattens r for output.
func newRunDetail(r *dataset.Run) *RunDetail {
	return &RunDetail{RunItem: r.ToItem(), Summary: r.Summary}
}

// Fetch retrieves a run by ID.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*RunDetail, error) {
	id, err := ValidateID(input.ID)
	if err != nil {
		return nil, err
	}

	r, err := db.GetByID(ctx, database, id, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	return newRunDetail(r), nil
}
