package catalog

import "errors"

var (
	ErrFileNotFound = errors.New("file not found")
	ErrFileInactive = errors.New("file is not active")
)
