package credstore

import "errors"

// Error is returned by every Store operation.
//
// Kind is a sentinel from internal/common. Err is the underlying cause, if
// any; it is reachable through errors.Is/errors.As but never rendered by
// Error, so driver messages do not reach end users.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the taxonomy sentinel carried by err, or nil if err did not
// come from a Store.
func KindOf(err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return nil
}
