package apperrors

import "errors"

// FieldError is the client-facing {path, message} pair.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Format turns any error into field errors. Unclassified errors never leak
// their text to the client.
func Format(err error) []FieldError {
	if err == nil {
		return nil
	}

	var e *Error
	if !errors.As(err, &e) {
		return []FieldError{{Path: "", Message: Internal(err).Message}}
	}

	message := e.Message
	if e.Kind == KindInternal {
		message = Internal(nil).Message
	}
	return []FieldError{{Path: e.Path, Message: message}}
}
