package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxJSONBodySize bounds the JSON bodies DecodeJSON reads.
const MaxJSONBodySize = 1 << 20

var (
	// ErrEmptyBody is returned by DecodeJSON when the request has no body.
	ErrEmptyBody = errors.New("request body is empty")

	// ErrTrailingData is returned when more than one JSON value is sent.
	ErrTrailingData = errors.New("request body must contain a single JSON value")
)

// Validate is the validator shared by all handlers. Field names in its
// errors are the json names of the request fields.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// DecodeJSON decodes a single JSON value from the request body into v.
// Bodies larger than MaxJSONBodySize fail to decode.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBodySize))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if dec.More() {
		return ErrTrailingData
	}
	return nil
}

// ValidateRequest checks v's validate struct tags, then its own Validate
// method when it has one.
func ValidateRequest(v interface{}) error {
	if err := Validate.Struct(v); err != nil {
		return err
	}
	if self, ok := v.(interface{ Validate() error }); ok {
		return self.Validate()
	}
	return nil
}
