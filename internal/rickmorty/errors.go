package rickmorty

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the API could not be reached or answered
	// with an unexpected status
	ErrUnavailable = errors.New("character API unavailable")

	// ErrBadResponse means the API answered with a body that could not
	// be decoded
	ErrBadResponse = errors.New("malformed response from character API")

	// ErrNotFound is returned by GetCharacter for an unknown id
	ErrNotFound = errors.New("character not found")
)

// FetchError is a failed fetch. Message is suitable for showing to users.
type FetchError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// UserMessage returns the human-readable part of err, falling back to
// err.Error() for anything that is not a FetchError.
func UserMessage(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return err.Error()
}
