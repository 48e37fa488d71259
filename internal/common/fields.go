package common

import (
	"strconv"
	"strings"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig/big"
)

// FieldSeparator separates the hexadecimal fields of key, credential and signature files.
const FieldSeparator = "#"

// JoinFields renders ints as lowercase hexadecimal joined by FieldSeparator.
func JoinFields(ints ...*big.Int) ([]byte, error) {
	parts := make([]string, len(ints))
	for i, x := range ints {
		if x == nil {
			return nil, errors.Errorf("field %d is missing", i)
		}
		bts, err := x.MarshalText()
		if err != nil {
			return nil, err
		}
		parts[i] = string(bts)
	}
	return []byte(strings.Join(parts, FieldSeparator)), nil
}

// SplitFields parses exactly count hexadecimal fields separated by FieldSeparator.
// Whitespace around the whole text and around each field is ignored.
func SplitFields(text []byte, count int) ([]*big.Int, error) {
	parts := strings.Split(strings.TrimSpace(string(text)), FieldSeparator)
	if len(parts) != count {
		return nil, errors.Errorf("expected %d fields, found %d", count, len(parts))
	}
	ints := make([]*big.Int, count)
	for i, part := range parts {
		ints[i] = new(big.Int)
		if err := ints[i].UnmarshalText([]byte(part)); err != nil {
			return nil, errors.WrapPrefix(err, "field "+strconv.Itoa(i+1), 0)
		}
	}
	return ints, nil
}
