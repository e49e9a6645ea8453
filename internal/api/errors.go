package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/bfres/internal/importer"
	"github.com/samcharles93/bfres/pkg/fres"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// statusFor maps decoder and store errors to HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, fres.ErrNotFound):
		return http.StatusNotFound, "not_found_error"
	case importer.Fatal(err):
		return http.StatusInternalServerError, "container_error"
	}
	// A per-asset failure: the entity exists but cannot be decoded.
	var ae *importer.AssetError
	if errors.As(err, &ae) {
		return http.StatusUnprocessableEntity, "unsupported_asset_error"
	}
	return http.StatusInternalServerError, "server_error"
}
