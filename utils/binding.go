package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// BindStrictJSON decodes the request body into obj, rejecting unknown fields,
// mistyped values and trailing data, then runs the binding tags.
func BindStrictJSON(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil {
		return NewValidation("request body is required")
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return NewValidation("cannot read request body")
	}
	return DecodeStrict(body, obj)
}

// DecodeStrict is the body-level half of BindStrictJSON.
func DecodeStrict(body []byte, obj interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return NewValidation("request body is required")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		return NewValidation("%s", describeDecodeError(err))
	}
	if dec.More() {
		return NewValidation("request body must contain a single JSON object")
	}

	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return NewValidation("%s", describeValidationError(err))
	}
	return nil
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		return fmt.Sprintf("field %q has the wrong type", typeErr.Field)
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return "unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field ")
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "malformed JSON"
	default:
		return err.Error()
	}
}

func describeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
