package ops

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/prodsynth/internal/dataset"
	"github.com/hpungsan/prodsynth/internal/db"
	"github.com/hpungsan/prodsynth/internal/errors"
)

const csvHeader = "productive_seconds,task_score,focus_index,self_report_productivity\n"

func TestGenerate_WritesFileAndRecordsRun(t *testing.T) {
	ctx := context.Background()
	database, cfg, dir := newTestEnv(t)
	path := filepath.Join(dir, "out.csv")

	out, err := Generate(ctx, database, cfg, GenerateInput{Path: path, Rows: intPtr(100)})
	require.NoError(t, err)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, path, out.Path)
	assert.Equal(t, 100, out.Rows)
	assert.Equal(t, dataset.DefaultUsers, out.Users)
	assert.Equal(t, uint64(dataset.DefaultSeed), out.Seed)
	assert.Equal(t, "File saved as out.csv in "+dir+".", out.Message)
	assert.Equal(t, 100, out.Summary.Rows)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), csvHeader))
	assert.Equal(t, 101, strings.Count(string(data), "\n"))

	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), out.SHA256)
	assert.Equal(t, int64(len(data)), out.Bytes)

	r, err := db.GetByID(ctx, database, out.ID, false)
	require.NoError(t, err)
	assert.Equal(t, out.SHA256, r.SHA256)
	assert.Equal(t, out.Summary.MeanSelfReport, r.Summary.MeanSelfReport)

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerate_SameSeedSameBytes(t *testing.T) {
	ctx := context.Background()
	database, cfg, dir := newTestEnv(t)

	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	in := GenerateInput{Rows: intPtr(500), Users: intPtr(30), Seed: uint64Ptr(1234)}

	in.Path = a
	outA, err := Generate(ctx, database, cfg, in)
	require.NoError(t, err)
	in.Path = b
	outB, err := Generate(ctx, database, cfg, in)
	require.NoError(t, err)

	dataA, err := os.ReadFile(a)
	require.NoError(t, err)
	dataB, err := os.ReadFile(b)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(dataA, dataB))
	assert.Equal(t, outA.SHA256, outB.SHA256)
	assert.NotEqual(t, outA.ID, outB.ID)
}

func TestGenerate_DifferentSeedsDiffer(t *testing.T) {
	ctx := context.Background()
	database, cfg, dir := newTestEnv(t)

	outA, err := Generate(ctx, database, cfg, GenerateInput{Path: filepath.Join(dir, "a.csv"), Rows: intPtr(50), Seed: uint64Ptr(1)})
	require.NoError(t, err)
	outB, err := Generate(ctx, database, cfg, GenerateInput{Path: filepath.Join(dir, "b.csv"), Rows: intPtr(50), Seed: uint64Ptr(2)})
	require.NoError(t, err)

	assert.NotEqual(t, outA.SHA256, outB.SHA256)
}

func TestGenerate_ZeroRowsHeaderOnly(t *testing.T) {
	database, cfg, dir := newTestEnv(t)
	path := filepath.Join(dir, "empty.csv")

	out, err := Generate(context.Background(), database, cfg, GenerateInput{Path: path, Rows: intPtr(0)})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, csvHeader, string(data))
	assert.Equal(t, 0, out.Rows)
	assert.Equal(t, 0, out.Summary.Rows)
}

func TestGenerate_OverwritesExisting(t *testing.T) {
	database, cfg, dir := newTestEnv(t)
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale contents\n"), 0600))

	_, err := Generate(context.Background(), database, cfg, GenerateInput{Path: path, Rows: intPtr(3)})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Equal(t, 4, strings.Count(string(data), "\n"))
}

func TestGenerate_RowsParseAsBoundedValues(t *testing.T) {
	database, cfg, dir := newTestEnv(t)
	path := filepath.Join(dir, "out.csv")

	_, err := Generate(context.Background(), database, cfg, GenerateInput{Path: path, Rows: intPtr(1000), Users: intPtr(5)})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 1001)
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		require.Len(t, fields, 4, line)
		assert.NotContains(t, fields[0], ".", "productive_seconds should be an integer")
		for _, f := range fields[1:] {
			assert.Contains(t, f, ".", "float fields keep a fractional part")
		}
	}
}

func TestGenerate_InvalidInput(t *testing.T) {
	database, cfg, dir := newTestEnv(t)
	path := filepath.Join(dir, "out.csv")

	tests := []struct {
		name  string
		input GenerateInput
	}{
		{"negative rows", GenerateInput{Path: path, Rows: intPtr(-5)}},
		{"zero users", GenerateInput{Path: path, Users: intPtr(0)}},
		{"wrong extension", GenerateInput{Path: filepath.Join(dir, "out.txt")}},
		{"outside allowed dirs", GenerateInput{Path: filepath.Join(t.TempDir(), "out.csv")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Generate(context.Background(), database, cfg, tc.input)
			assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
		})
	}

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no file should be written for rejected input")
}

func TestGenerate_Cancelled(t *testing.T) {
	database, cfg, dir := newTestEnv(t)
	path := filepath.Join(dir, "out.csv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, database, cfg, GenerateInput{Path: path, Rows: intPtr(10)})
	assert.True(t, errors.Is(err, errors.ErrCancelled), "got %v", err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerate_SymlinkTargetRejected(t *testing.T) {
	database, cfg, dir := newTestEnv(t)

	target := filepath.Join(t.TempDir(), "elsewhere.csv")
	require.NoError(t, os.WriteFile(target, []byte("keep\n"), 0600))
	link := filepath.Join(dir, "link.csv")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	_, err := Generate(context.Background(), database, cfg, GenerateInput{Path: link, Rows: intPtr(3)})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "keep\n", string(data))
}
