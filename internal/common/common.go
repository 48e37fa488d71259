package common

import (
	"io"
	"os"

	"github.com/go-errors/errors"
)

// Error kinds shared by all artifact readers. They are re-exported by the keys and
// proxysig packages.
var (
	ErrInputIO   = errors.New("cannot read input")
	ErrMalformed = errors.New("malformed artifact")
)

// Close is a helper function for absorbing errors in the `defer x.Close()` pattern
func Close(o io.Closer) {
	_ = o.Close()
}

// ReadFile returns the contents of filename, failing with ErrInputIO if the file
// is absent or unreadable.
func ReadFile(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Errorf("%w %s: %w", ErrInputIO, filename, err)
	}
	defer Close(f)

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Errorf("%w %s: %w", ErrInputIO, filename, err)
	}
	return b, nil
}

// WriteFile writes data to filename with the given permissions. If any existing file
// with the same filename should be overwritten, set forceOverwrite to true.
func WriteFile(filename string, data []byte, perm os.FileMode, forceOverwrite bool) (int64, error) {
	var f *os.File
	var err error
	if forceOverwrite {
		f, err = os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	} else {
		// This should return an error if the file already exists
		f, err = os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	}
	if err != nil {
		return 0, errors.WrapPrefix(err, "cannot write "+filename, 0)
	}

	n, err := f.Write(data)
	if err != nil {
		Close(f)
		return int64(n), errors.WrapPrefix(err, "cannot write "+filename, 0)
	}
	return int64(n), f.Close()
}

// Malformed wraps a parse failure of the named artifact as ErrMalformed.
func Malformed(what string, err error) error {
	return errors.Errorf("%w: %s: %w", ErrMalformed, what, err)
}
