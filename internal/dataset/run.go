package dataset

// Run records one generated dataset file.
type Run struct {
	// ID is a ULID that uniquely identifies this run
	ID string

	// Path is the absolute path the CSV was written to
	Path string

	// Rows is the number of data rows written
	Rows int

	// Users is the size of the sampled user pool
	Users int

	// Seed is the generator seed
	Seed uint64

	// SHA256 is the hex digest of the file bytes
	SHA256 string

	// Bytes is the file size
	Bytes int64

	// Summary holds descriptive statistics of the rows
	Summary Summary

	// CreatedAt is the Unix timestamp when the file was finalized
	CreatedAt int64

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64
}

// RunItem is a run without its Summary, used for list views.
type RunItem struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Rows      int    `json:"rows"`
	Users     int    `json:"users"`
	Seed      uint64 `json:"seed"`
	SHA256    string `json:"sha256"`
	Bytes     int64  `json:"bytes"`
	CreatedAt int64  `json:"created_at"`
	DeletedAt *int64 `json:"deleted_at,omitempty"`
}

// ToItem strips the summary from r.
func (r *Run) ToItem() RunItem {
	return RunItem{
		ID:        r.ID,
		Path:      r.Path,
		Rows:      r.Rows,
		Users:     r.Users,
		Seed:      r.Seed,
		SHA256:    r.SHA256,
		Bytes:     r.Bytes,
		CreatedAt: r.CreatedAt,
		DeletedAt: r.DeletedAt,
	}
}
