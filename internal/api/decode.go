package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps JSON request bodies.  Uploads use multipart and their
// own limit.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}

// Decode reads a JSON body into dst and validates it with `validate` tags.
// Any failure is a validation_error: one detail for malformed JSON, or one
// detail per invalid field.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return ValidationError(jsonDetail(err))
	}
	return Validate(dst)
}

// Validate checks dst's struct tags and maps every failing field onto a
// FieldError located under "body".
func Validate(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Internal(fmt.Errorf("validate %T: %w", dst, err))
	}

	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{
			Loc:  fieldLoc(fe.Namespace()),
			Msg:  fieldMsg(fe),
			Type: fe.Tag(),
		})
	}
	return ValidationError(details...)
}

// fieldLoc turns "Payload.address.city" into ["body", "address", "city"].
func fieldLoc(ns string) []string {
	parts := strings.Split(ns, ".")
	loc := make([]string, 0, len(parts))
	loc = append(loc, "body")
	return append(loc, parts[1:]...)
}

func fieldMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field required"
	case "email":
		return "Value is not a valid email address"
	case "min", "gte":
		return "Value must be at least " + fe.Param()
	case "max", "lte":
		return "Value must be at most " + fe.Param()
	case "oneof":
		return "Value must be one of: " + fe.Param()
	case "url":
		return "Value is not a valid URL"
	default:
		return fmt.Sprintf("Value failed %q validation", fe.Tag())
	}
}

func jsonDetail(err error) FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		loc := append([]string{"body"}, strings.Split(typeErr.Field, ".")...)
		return FieldError{
			Loc:  loc,
			Msg:  "Input should be a valid " + typeErr.Type.String(),
			Type: "type_error",
		}
	}
	if errors.Is(err, io.EOF) {
		return FieldError{Loc: []string{"body"}, Msg: "Field required", Type: "missing"}
	}
	return FieldError{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"}
}
