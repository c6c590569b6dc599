package service

import "errors"

// Sentinel errors for the service layer. Handlers translate these into HTTP
// statuses; anything else is a server error.
var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrWrongPasscode      = errors.New("incorrect passcode")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrMissingField       = errors.New("required field is missing")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrNotFound           = errors.New("folder not found")
	ErrFolderExists       = errors.New("folder already exists")
	ErrInvalidPath        = errors.New("invalid folder path")
)
