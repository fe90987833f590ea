package shamy

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const deterministicSalt = "SHAMY_DETERMINISTIC_READER_v1"

// hkdfBlockSize is the most output a single HKDF-SHA256 expansion yields.
const hkdfBlockSize = 255 * sha256.Size

// DeterministicReader is an io.Reader producing an unbounded HKDF-SHA256
// stream from a seed. Output is split into blocks; block k expands the
// seed with info || k. It is for tests and entropy replay only; never
// use a guessable seed to produce real keys.
type DeterministicReader struct {
	seed    []byte
	info    []byte
	counter uint64
	block   io.Reader
}

// NewDeterministicReader creates a reader bound to seed and info. The seed
// is copied.
func NewDeterministicReader(seed, info []byte) *DeterministicReader {
	r := &DeterministicReader{
		seed: append([]byte(nil), seed...),
		info: append([]byte(nil), info...),
	}
	r.block = r.nextBlock()
	return r
}

func (r *DeterministicReader) nextBlock() io.Reader {
	counter := make([]byte, 8)
	binary.BigEndian.PutUint64(counter, r.counter)
	r.counter++

	info := make([]byte, 0, len(r.info)+len(counter))
	info = append(info, r.info...)
	info = append(info, counter...)
	return io.LimitReader(hkdf.New(sha256.New, r.seed, []byte(deterministicSalt), info), hkdfBlockSize)
}

// Read fills p completely; it never returns an error.
func (r *DeterministicReader) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := r.block.Read(p[total:])
		total += n
		if errors.Is(err, io.EOF) {
			r.block = r.nextBlock()
			continue
		}
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Zeroize clears the seed. The reader must not be used afterwards.
func (r *DeterministicReader) Zeroize() {
	ZeroizeBytes(r.seed)
}
