package services

import "errors"

var (
	ErrNotFound        = errors.New("resource not found")
	ErrForbidden       = errors.New("not allowed")
	ErrInvalidInput    = errors.New("invalid input")
	ErrBadCredentials  = errors.New("invalid username or password")
	ErrImageRequired   = errors.New("an image file is required")
	ErrNotAnImage      = errors.New("invalid file type, please upload an image")
	ErrInferenceFailed = errors.New("inpainting failed")
	ErrAIUnavailable   = errors.New("ai functionality not available, please check configuration")
)
