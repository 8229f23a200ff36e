package utils

import "fmt"

// RecoverWithError stores a recovered panic in *err. Panics carrying an error
// stay unwrappable.
func RecoverWithError(err *error) {
	rv := recover()
	if rv == nil {
		return
	}
	if cause, ok := rv.(error); ok {
		*err = fmt.Errorf("got panic: %w", cause)
		return
	}
	*err = fmt.Errorf("got panic: %v", rv)
}
