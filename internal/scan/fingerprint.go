package scan

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies one version of a file's contents.
type Fingerprint struct {
	Mtime int64 // unix nanoseconds
	Size  int64
	Hash  uint64
}

// FingerprintFile stats and hashes the file at path.
func FingerprintFile(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Fingerprint{}, err
	}
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return Fingerprint{}, fmt.Errorf("hash %s: %w", path, err)
	}
	return Fingerprint{Mtime: info.ModTime().UnixNano(), Size: info.Size(), Hash: h.Sum64()}, nil
}

// HashingReader fingerprints exactly the bytes read through it. The mtime
// is the one observed when the file was opened, so a write that lands
// while or after reading leaves a fingerprint that no longer matches.
type HashingReader struct {
	r     io.Reader
	h     *xxhash.Digest
	n     int64
	mtime int64
}

// NewHashingReader wraps an opened file.
func NewHashingReader(f *os.File) (*HashingReader, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &HashingReader{r: f, h: xxhash.New(), mtime: info.ModTime().UnixNano()}, nil
}

func (hr *HashingReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	if n > 0 {
		hr.h.Write(p[:n])
		hr.n += int64(n)
	}
	return n, err
}

// Fingerprint describes the content read so far.
func (hr *HashingReader) Fingerprint() Fingerprint {
	return Fingerprint{Mtime: hr.mtime, Size: hr.n, Hash: hr.h.Sum64()}
}
