package engine

import "errors"

var (
	// ErrGeneration wraps a failed main generation call. Nothing was
	// recorded when it is returned.
	ErrGeneration = errors.New("generation failed")
	// ErrBusy is returned when Respond is called while another call on the
	// same engine is still running.
	ErrBusy = errors.New("conversation is busy with another request")
)

// PersistError reports a reply that was generated and added to the
// conversation window but could not be saved to the store. The reply
// returned alongside it is valid.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return "response not saved: " + e.Err.Error()
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
