package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when input does not satisfy a record schema.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Decode parses a JSON document into a record of kind T and validates it.
// Unknown fields are ignored; anything after the document is rejected.
func Decode[T any](raw []byte) (T, error) {
	var record T
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&record); err != nil {
		return record, decodeError(err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return record, &ValidationError{Fields: []FieldError{{
			Field:   "body",
			Message: fmt.Sprintf("unexpected data after JSON object at offset %d", dec.InputOffset()),
		}}}
	}
	if err := Validate(record); err != nil {
		return record, err
	}
	return record, nil
}

// Validate checks a record against its field constraints.
func Validate(record any) error {
	err := validatorInstance().Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "datetime":
		return fmt.Sprintf("invalid date, expected format %s", DateLayout)
	case "gte":
		return "ensure this value is greater than or equal to " + fe.Param()
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}

func decodeError(err error) *ValidationError {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, io.EOF):
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: "field required"}}}
	case errors.As(err, &syntaxErr):
		return &ValidationError{Fields: []FieldError{{
			Field:   "body",
			Message: fmt.Sprintf("invalid JSON at offset %d", syntaxErr.Offset),
		}}}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &ValidationError{Fields: []FieldError{{
			Field:   field,
			Message: "expected " + typeErr.Type.String(),
		}}}
	default:
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: err.Error()}}}
	}
}
