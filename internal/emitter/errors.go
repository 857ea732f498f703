package emitter

import "fmt"

// WriteError is fatal, the emitter does not retry or reopen the port
type WriteError struct {
	Second   int64
	Sentence string
	err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing sentence for second %d: %v", e.Second, e.err)
}

func (e *WriteError) Unwrap() error {
	return e.err
}

func (e *WriteError) Is(tgt error) bool {
	_, ok := tgt.(*WriteError)
	return ok
}
