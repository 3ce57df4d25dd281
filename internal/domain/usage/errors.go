package usage

import "errors"

var (
	ErrTokenNotFound      = errors.New("download token not found")
	ErrTokenExpired       = errors.New("download token has expired")
	ErrTokenOwnerMismatch = errors.New("download token belongs to a different user")
)
