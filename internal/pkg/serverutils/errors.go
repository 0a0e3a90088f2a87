package serverutils

import "errors"

var (
	ErrBadRequest    = errors.New("bad request")
	ErrNotFound      = errors.New("resource not found")
	ErrForbidden     = errors.New("access denied")
	ErrUnprocessable = errors.New("unprocessable content")
)
