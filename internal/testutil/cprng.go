// Package testutil holds helpers shared by the tests of several packages.
package testutil

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"io"
	"os"
	"runtime"
	"sync/atomic"
	"testing"
)

// CPRNG is a deterministic, thread-safe pseudo-random byte stream.
// Implemented with AES in counter mode with the seed as key and an
// atomic uint64 as counter, so that tests drawing nonces are reproducible.
type CPRNG struct {
	block   cipher.Block
	counter uint64
}

// NewCPRNG returns a CPRNG whose 32-byte key is seed repeated.
func NewCPRNG(seed byte) *CPRNG {
	var key [32]byte
	for i := range key {
		key[i] = seed
	}
	c, err := aes.NewCipher(key[:])
	if err != nil {
		panic(err) // a 32-byte key is always valid
	}
	return &CPRNG{block: c}
}

func (c *CPRNG) Read(buf []byte) (n int, err error) {
	var pt, ct [16]byte
	n = len(buf)
	if n == 0 {
		return
	}

	// Number of blocks required
	nBlocks := uint64(((len(buf) - 1) / 16) + 1)

	// Atomically increment counter by the number of blocks and set iv to
	// the first available block.
	iv := atomic.AddUint64(&c.counter, nBlocks) - nBlocks
	for {
		binary.LittleEndian.PutUint64(pt[:], iv)
		iv++

		// Still 16 bytes to go?  Then encrypt directly into buf.
		if len(buf) >= 16 {
			c.block.Encrypt(buf, pt[:])
			buf = buf[16:]
			continue
		}
		if len(buf) == 0 {
			break
		}

		// Otherwise, encrypt into ct and copy into buf.
		c.block.Encrypt(ct[:], pt[:])
		copy(buf, ct[:len(buf)])
		break
	}
	return
}

// BytesReader replays the given bytes and then fails with io.ErrUnexpectedEOF.
type BytesReader struct {
	data []byte
}

func NewBytesReader(data ...byte) *BytesReader {
	return &BytesReader{data: data}
}

func (r *BytesReader) Read(buf []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	n := copy(buf, r.data)
	r.data = r.data[n:]
	return n, nil
}

// AssertFilePerm verifies that filename exists with exactly the given permissions.
func AssertFilePerm(t testing.TB, filename string, perm os.FileMode) {
	t.Helper()

	info, err := os.Stat(filename)
	if err != nil {
		t.Fatalf("stat file failed: %v", err)
	}
	if runtime.GOOS == "windows" {
		return
	}
	if got := info.Mode().Perm(); got != perm {
		t.Fatalf("expected file perm %04o, got %04o for %s", perm, got, filename)
	}
}
