package keys

import "github.com/privacybydesign/proxysig/internal/common"

var (
	// ErrInputIO is returned when an input file is absent or unreadable.
	ErrInputIO = common.ErrInputIO
	// ErrMalformed is returned when an artifact has the wrong number of fields,
	// contains invalid hexadecimal, or describes an invalid domain.
	ErrMalformed = common.ErrMalformed
)
