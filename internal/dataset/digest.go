package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Digest tees writes into a SHA-256 hash and counts the bytes that pass
// through. A nil destination only hashes.
type Digest struct {
	w io.Writer
	h hash.Hash
	n int64
}

// NewDigest returns a Digest that forwards to w.
func NewDigest(w io.Writer) *Digest {
	return &Digest{w: w, h: sha256.New()}
}

func (d *Digest) Write(p []byte) (int, error) {
	if d.w != nil {
		n, err := d.w.Write(p)
		d.h.Write(p[:n])
		d.n += int64(n)
		return n, err
	}
	d.h.Write(p)
	d.n += int64(len(p))
	return len(p), nil
}

// Sum returns the hex digest of everything written so far.
func (d *Digest) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// Bytes returns the number of bytes written so far.
func (d *Digest) Bytes() int64 {
	return d.n
}

// DigestRows returns the SHA-256 and size of the CSV encoding of rows
// without touching the filesystem.
func DigestRows(rows []Row) (string, int64, error) {
	d := NewDigest(nil)
	if err := WriteCSV(d, rows); err != nil {
		return "", 0, err
	}
	return d.Sum(), d.Bytes(), nil
}
