package mirror

import "fmt"

// RemoteError is a transport failure or a non-2xx answer from the mirror.
// It never invalidates the local operation it accompanies.
type RemoteError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("remote %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("remote %s failed: status %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }
