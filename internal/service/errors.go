package service

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrCanvasNotFound       = errors.New("canvas not found")
	ErrForbidden            = errors.New("you do not have permission to modify this canvas")
	ErrInvalidGrid          = errors.New("invalid grid data")
	ErrInvalidCanvas        = errors.New("invalid canvas parameters")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: username already exists")
	ErrInternalServer       = errors.New("internal server error")
)
