package backend

import (
	"fmt"

	"github.com/go-faster/jx"
)

// APIError is the backend's tagged error envelope: {"error": <kind>, "message": <detail>}.
type APIError struct {
	Kind    string
	Message string
	Status  int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %s (http %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("backend: %s: %s (http %d)", e.Kind, e.Message, e.Status)
}

// IsKind reports whether err is an APIError with the given kind.
func IsKind(err error, kind string) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	return apiErr.Kind == kind
}

// AsAPIError unwraps err into an APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	apiErr, ok := err.(*APIError)
	return apiErr, ok
}

// parseAPIError decodes the error envelope from a non-2xx body. Bodies that
// are not the expected shape produce an APIError with an empty kind, which no
// flow branch matches.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	d := jx.DecodeBytes(body)
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "error":
			v, err := d.Str()
			if err != nil {
				return err
			}
			apiErr.Kind = v
		case "message":
			v, err := d.Str()
			if err != nil {
				return err
			}
			apiErr.Message = v
		default:
			return d.Skip()
		}
		return nil
	})

	return apiErr
}
