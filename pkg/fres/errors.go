package fres

import "errors"

var (
	ErrTruncated                = errors.New("fres: read past end of file")
	ErrBadMagic                 = errors.New("fres: bad magic")
	ErrNotFound                 = errors.New("fres: entry not found")
	ErrUnsupportedPrimitiveType = errors.New("fres: unsupported primitive type")
	ErrUnsupportedIndexFormat   = errors.New("fres: unsupported index format")
	ErrUnsupportedAttribFormat  = errors.New("fres: unsupported attribute format")
)
