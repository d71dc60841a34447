package sandbox

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// Message extracts the message a JavaScript author would see for err.
// Thrown Error objects yield their message property; thrown values that are
// not objects with a message yield "".
func Message(err error) string {
	if err == nil {
		return ""
	}

	var ex *goja.Exception
	if errors.As(err, &ex) {
		obj, ok := ex.Value().(*goja.Object)
		if !ok {
			return ""
		}
		m := obj.Get("message")
		if m == nil || goja.IsUndefined(m) || goja.IsNull(m) {
			return ""
		}
		return m.String()
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Sprintf("execution interrupted: %v", interrupted.Value())
	}

	return err.Error()
}

// Interrupted reports whether err was caused by a timeout or cancellation.
func Interrupted(err error) bool {
	var interrupted *goja.InterruptedError
	return errors.As(err, &interrupted)
}
