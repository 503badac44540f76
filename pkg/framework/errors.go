package framework

import (
	"fmt"
	"strings"
)

// AggregatedError is the list of errors from runnables that failed.
type AggregatedError []error

// Error implements error.
func (e AggregatedError) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for n, err := range e {
		msgs[n] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e), strings.Join(msgs, "; "))
}

// Add appends non-nil errors.
func (e *AggregatedError) Add(errs ...error) {
	for _, err := range errs {
		if err != nil {
			*e = append(*e, err)
		}
	}
}

// Aggregate returns nil when empty, the error itself when only one.
func (e AggregatedError) Aggregate() error {
	switch len(e) {
	case 0:
		return nil
	case 1:
		return e[0]
	}
	return e
}
