package predict

import (
	"fmt"
	"net/http"
)

// Kind classifies where in the pipeline a prediction failed.
type Kind int

const (
	ModelUnavailable Kind = iota + 1
	MissingInput
	UnsupportedType
	StorageError
	PreprocessError
	ConfigError
	InferenceError
)

func (k Kind) String() string {
	switch k {
	case ModelUnavailable:
		return "model_unavailable"
	case MissingInput:
		return "missing_input"
	case UnsupportedType:
		return "unsupported_type"
	case StorageError:
		return "storage_error"
	case PreprocessError:
		return "preprocess_error"
	case ConfigError:
		return "config_error"
	case InferenceError:
		return "inference_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Status is the HTTP status reported for k.
func (k Kind) Status() int {
	switch k {
	case MissingInput, UnsupportedType, PreprocessError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message is the client-facing text for k.
func (k Kind) Message() string {
	switch k {
	case ModelUnavailable:
		return "Model not available on server"
	case MissingInput:
		return "No file uploaded"
	case UnsupportedType:
		return "Unsupported file type"
	case StorageError:
		return "Failed to save uploaded file"
	case PreprocessError:
		return "Image processing failed"
	case ConfigError:
		return "Model output shape does not match label count"
	case InferenceError:
		return "Prediction failed"
	default:
		return "Internal server error"
	}
}

// Error is a failed prediction. Message is safe to return to clients; Err
// holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: kind.Message(), Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status is the HTTP status for the error's kind.
func (e *Error) Status() int { return e.Kind.Status() }
