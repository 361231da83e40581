package crypto

import (
	"encoding/hex"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
)

// Digester computes a BLAKE2b-256 digest of everything written to it while
// counting the bytes seen.
type Digester struct {
	h    hash.Hash
	size int64
}

// NewDigester returns an unkeyed BLAKE2b-256 Digester.
func NewDigester() *Digester {
	// blake2b.New256 only fails for keys longer than 64 bytes.
	h, _ := blake2b.New256(nil)
	return &Digester{h: h}
}

func (d *Digester) Write(p []byte) (int, error) {
	n, err := d.h.Write(p)
	d.size += int64(n)
	return n, err
}

// Size reports how many bytes have been written.
func (d *Digester) Size() int64 {
	return d.size
}

// Sum returns the hex encoded digest.
func (d *Digester) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// DigestReader reads r to EOF and returns its hex digest and length.
func DigestReader(r io.Reader) (string, int64, error) {
	d := NewDigester()
	if _, err := io.Copy(d, r); err != nil {
		return "", 0, err
	}
	return d.Sum(), d.Size(), nil
}
