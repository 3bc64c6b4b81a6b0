package definitions

import "fmt"

// ErrorKind classifies a failed call. Every failure that reaches the
// protocol layer carries exactly one kind so it can be mapped to a
// stable JSON-RPC error code.
type ErrorKind int

const (
	// ValidationError rejects bad tool arguments before any driver runs.
	ValidationError ErrorKind = iota
	// DeviceError means no matching device, or the device is offline.
	DeviceError
	// UnsupportedError means the operation is not available for the
	// resolved platform or device kind.
	UnsupportedError
	// SubprocessError means an external tool exited nonzero or produced
	// unparsable output.
	SubprocessError
	// IOError means a requested output file could not be written.
	IOError
)

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Code maps the error kind to its JSON-RPC error code. Protocol-level
// codes (-32700 parse, -32601 method not found) are produced directly
// by the server and never pass through here.
func (e *Error) Code() int {
	switch e.Kind {
	case ValidationError:
		return -32602
	case DeviceError:
		return -32000
	case UnsupportedError:
		return -32001
	case SubprocessError:
		return -32002
	case IOError:
		return -32003
	default:
		return -32603
	}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: ValidationError, Message: fmt.Sprintf(format, args...)}
}

func Devicef(format string, args ...any) *Error {
	return &Error{Kind: DeviceError, Message: fmt.Sprintf(format, args...)}
}

func Unsupportedf(format string, args ...any) *Error {
	return &Error{Kind: UnsupportedError, Message: fmt.Sprintf(format, args...)}
}

func Subprocessf(format string, args ...any) *Error {
	return &Error{Kind: SubprocessError, Message: fmt.Sprintf(format, args...)}
}

func IOf(format string, args ...any) *Error {
	return &Error{Kind: IOError, Message: fmt.Sprintf(format, args...)}
}
