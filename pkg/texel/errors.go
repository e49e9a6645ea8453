package texel

import "errors"

var (
	// ErrShortData reports a level buffer smaller than its dimensions need.
	ErrShortData = errors.New("texel: data shorter than image")
	// ErrInvalidSize reports a non-positive width or height.
	ErrInvalidSize = errors.New("texel: invalid image size")
)
