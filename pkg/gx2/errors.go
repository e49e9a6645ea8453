package gx2

import "errors"

var (
	ErrUnsupportedFormat   = errors.New("gx2: unsupported surface format")
	ErrUnsupportedTileMode = errors.New("gx2: unsupported tile mode")
	ErrInvalidSurface      = errors.New("gx2: invalid surface description")
)
