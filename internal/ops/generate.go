package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hpungsan/prodsynth/internal/config"
	"github.com/hpungsan/prodsynth/internal/dataset"
	"github.com/hpungsan/prodsynth/internal/db"
	"github.com/hpungsan/prodsynth/internal/errors"
	"github.com/hpungsan/prodsynth/internal/observability"
)

// GenerateInput contains parameters for the Generate operation.
// Nil fields fall back to the config, then to the dataset defaults.
type GenerateInput struct {
	Path  string  // optional, default: cfg.OutputName in the working directory
	Rows  *int    // 0 writes a header-only file
	Users *int    // must be >= 1
	Seed  *uint64 // any value
}

// GenerateOutput contains the result of the Generate operation.
type GenerateOutput struct {
	ID          string          `json:"id"`
	Path        string          `json:"path"`
	Rows        int             `json:"rows"`
	Users       int             `json:"users"`
	Seed        uint64          `json:"seed"`
	SHA256      string          `json:"sha256"`
	Bytes       int64           `json:"bytes"`
	GeneratedAt int64           `json:"generated_at"`
	Message     string          `json:"message"`
	Summary     dataset.Summary `json:"summary"`
}

// generateParams is a GenerateInput with every default applied.
type generateParams struct {
	path  string
	rows  int
	users int
	seed  uint64
}

// resolveGenerate applies defaults and validates ranges.
func resolveGenerate(cfg *config.Config, input GenerateInput) (generateParams, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	p := generateParams{
		path:  input.Path,
		rows:  cfg.Rows,
		users: cfg.Users,
		seed:  cfg.SeedValue(),
	}
	if p.path == "" {
		p.path = cfg.OutputName
	}
	if p.path == "" {
		p.path = dataset.DefaultFileName
	}
	if p.rows <= 0 {
		p.rows = dataset.DefaultRows
	}
	if p.users <= 0 {
		p.users = dataset.DefaultUsers
	}

	if input.Rows != nil {
		p.rows = *input.Rows
	}
	if input.Users != nil {
		p.users = *input.Users
	}
	if input.Seed != nil {
		p.seed = *input.Seed
	}

	if p.rows < 0 {
		return p, errors.NewInvalidRequest("rows must be >= 0")
	}
	if p.rows > dataset.MaxRows {
		return p, errors.NewInvalidRequest(fmt.Sprintf("rows must be <= %d", dataset.MaxRows))
	}
	if p.users < 1 {
		return p, errors.NewInvalidRequest("users must be >= 1")
	}

	return p, nil
}

// Generate synthesizes a dataset, writes it atomically as CSV and records
// the run in the ledger. An existing file at the target path is replaced.
func Generate(ctx context.Context, database *sql.DB, cfg *config.Config, input GenerateInput) (out *GenerateOutput, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			observability.RecordFailure()
		}
	}()

	params, err := resolveGenerate(cfg, input)
	if err != nil {
		return nil, err
	}

	absPath, err := ValidatePath(params.path, cfg)
	if err != nil {
		return nil, err
	}

	gen := dataset.NewGenerator(dataset.Options{Users: params.users, Seed: params.seed})
	rows, err := gen.Generate(ctx, params.rows)
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewCancelled("generate")
		}
		return nil, errors.NewInternal(err)
	}

	summary := dataset.Summarize(rows)

	sum, size, err := writeDataset(ctx, absPath, rows)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	id, err := newRunID(now)
	if err != nil {
		return nil, err
	}

	run := &dataset.Run{
		ID:        id,
		Path:      absPath,
		Rows:      params.rows,
		Users:     params.users,
		Seed:      params.seed,
		SHA256:    sum,
		Bytes:     size,
		Summary:   summary,
		CreatedAt: now.Unix(),
	}
	if err := db.Insert(ctx, database, run); err != nil {
		return nil, err
	}

	observability.RecordGenerated(len(rows), time.Since(start), now)

	return &GenerateOutput{
		ID:          id,
		Path:        absPath,
		Rows:        params.rows,
		Users:       params.users,
		Seed:        params.seed,
		SHA256:      sum,
		Bytes:       size,
		GeneratedAt: run.CreatedAt,
		Message:     fmt.Sprintf("File saved as %s in %s.", filepath.Base(absPath), filepath.Dir(absPath)),
		Summary:     summary,
	}, nil
}

// writeDataset writes rows to a temp file beside path, then renames it into
// place so a failed write never leaves a truncated dataset behind.
// It returns the SHA-256 and size of the bytes written.
func writeDataset(ctx context.Context, path string, rows []dataset.Row) (string, int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", 0, errors.NewIOFailure("mkdir", filepath.Dir(path), err)
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", 0, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidRequest) {
			return "", 0, err
		}
		return "", 0, errors.NewIOFailure("create", tempPath, err)
	}

	// The temp file goes away on any failure; the previous dataset survives
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	digest := dataset.NewDigest(file)
	if err := dataset.WriteCSV(digest, rows); err != nil {
		return "", 0, errors.NewIOFailure("write", tempPath, err)
	}

	if err := file.Sync(); err != nil {
		return "", 0, errors.NewIOFailure("sync", tempPath, err)
	}

	// Close before rename (required on Windows)
	if err := file.Close(); err != nil {
		return "", 0, errors.NewIOFailure("close", tempPath, err)
	}
	file = nil

	if err := ctx.Err(); err != nil {
		return "", 0, errors.NewCancelled("generate")
	}

	// os.Rename would replace the link, not its target
	if isSymlink(path) {
		return "", 0, errors.NewInvalidRequest("path must not be a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		return "", 0, errors.NewIOFailure("rename", path, err)
	}

	success = true
	return digest.Sum(), digest.Bytes(), nil
}
