package ops

import (
	"context"
	"database/sql"
	stderrors "errors"
	"io"

	"github.com/hpungsan/prodsynth/internal/dataset"
	"github.com/hpungsan/prodsynth/internal/db"
	"github.com/hpungsan/prodsynth/internal/errors"
)

// VerifyInput contains parameters for the Verify operation.
type VerifyInput struct {
	ID string
}

// VerifyOutput contains the result of the Verify operation.
type VerifyOutput struct {
	ID   string `json:"id"`
	Path string `json:"path"`

	// Reproducible is true when regenerating from the recorded seed, rows
	// and users yields the recorded digest.
	Reproducible bool `json:"reproducible"`

	// FilePresent is false when the dataset file no longer exists.
	FilePresent bool `json:"file_present"`

	// FileMatches is true when the file on disk has the recorded digest.
	FileMatches bool `json:"file_matches"`

	RecordedSHA256    string `json:"recorded_sha256"`
	RegeneratedSHA256 string `json:"regenerated_sha256"`
	FileSHA256        string `json:"file_sha256,omitempty"`
	Message           string `json:"message"`
}

// Verify regenerates a recorded run in memory and compares its digest with
// the ledger and with the file on disk.
func Verify(ctx context.Context, database *sql.DB, input VerifyInput) (*VerifyOutput, error) {
	id, err := ValidateID(input.ID)
	if err != nil {
		return nil, err
	}

	r, err := db.GetByID(ctx, database, id, true)
	if err != nil {
		return nil, err
	}

	rows, err := dataset.NewGenerator(dataset.Options{Users: r.Users, Seed: r.Seed}).Generate(ctx, r.Rows)
	if err != nil {
		return nil, errors.NewCancelled("verify")
	}
	regenerated, _, err := dataset.DigestRows(rows)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	out := &VerifyOutput{
		ID:                r.ID,
		Path:              r.Path,
		Reproducible:      regenerated == r.SHA256,
		RecordedSHA256:    r.SHA256,
		RegeneratedSHA256: regenerated,
	}

	fileSum, err := digestFile(r.Path)
	switch {
	case errors.Is(err, errors.ErrFileNotFound):
		out.FilePresent = false
	case err != nil:
		return nil, err
	default:
		out.FilePresent = true
		out.FileSHA256 = fileSum
		out.FileMatches = fileSum == r.SHA256
	}

	out.Message = verifyMessage(out)
	return out, nil
}

// digestFile hashes the file at path without following a final symlink.
func digestFile(path string) (string, error) {
	f, err := openFileNoFollowRead(path)
	if err != nil {
		var sErr *errors.SynthError
		if stderrors.As(err, &sErr) {
			return "", err
		}
		return "", errors.NewIOFailure("open", path, err)
	}
	defer f.Close()

	d := dataset.NewDigest(nil)
	if _, err := io.Copy(d, f); err != nil {
		return "", errors.NewIOFailure("read", path, err)
	}
	return d.Sum(), nil
}

func verifyMessage(v *VerifyOutput) string {
	switch {
	case !v.Reproducible:
		return "Regenerated dataset differs from the recorded digest"
	case !v.FilePresent:
		return "Dataset is reproducible; file is missing"
	case !v.FileMatches:
		return "Dataset is reproducible; file on disk has been modified"
	default:
		return "Dataset is reproducible and the file matches"
	}
}
