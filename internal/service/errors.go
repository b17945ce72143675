package service

import (
	"net/http"
)

// Client-visible messages.
const (
	MsgFillAllFields     = "Please fill in all fields"
	MsgPasswordTooShort  = "Password must be at least 6 characters long"
	MsgPasswordTooLong   = "Password must be at most 72 bytes long"
	MsgUserExists        = "User already exists"
	MsgInvalidCredential = "Invalid Credential"
	MsgProvidePicture    = "Please provide a profile picture"
	MsgInvalidPicture    = "Invalid profile picture"

	MsgNoToken      = "No Token Provided"
	MsgInvalidToken = "Invalid Token"
	MsgNoUserFound  = "No User Found"
)

// ClientError is a failure caused by the caller: bad input or failed
// authentication. Its message is safe to return as-is. Any other error is
// internal and must be reported as a generic 500.
type ClientError struct {
	Status  int
	Message string
}

func (e *ClientError) Error() string {
	return e.Message
}

func validationError(msg string) *ClientError {
	return &ClientError{Status: http.StatusBadRequest, Message: msg}
}

func unauthorizedError(msg string) *ClientError {
	return &ClientError{Status: http.StatusUnauthorized, Message: msg}
}
