package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/geocoder89/eventmanager/internal/apperr"
)

func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondAppError(ctx, apperr.New(apperr.KindPayloadTooLarge))
			return false
		}

		RespondValidation(ctx, parseBindError(err, out))
		return false
	}

	return true
}

func parseBindError(err error, out interface{}) []FieldError {
	rootType := baseStructType(out)

	// validator errors (struct bind tags)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			field := jsonPathFromValidatorError(rootType, fieldError)
			rule := fieldError.Tag()
			param := fieldError.Param()

			fields = append(fields, FieldError{
				Field:   field,
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}
		return fields
	}

	if errors.Is(err, io.EOF) {
		return []FieldError{{Rule: "required", Message: "request body is required"}}
	}

	// in the event of bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []FieldError{{Rule: "json", Message: "invalid JSON syntax"}}
	}

	// in the event of a type mismatch

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		// the decoder already reports the json key
		field := strings.TrimSpace(unmatchedTypeError.Field)

		return []FieldError{
			{
				Field:   field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", unmatchedTypeError.Type.String()),
			},
		}
	}

	var timeErr *time.ParseError
	if errors.As(err, &timeErr) {
		return []FieldError{{Rule: "datetime", Message: "datetime has wrong format, use RFC 3339"}}
	}

	// final fallback; the raw decoder message is not exposed
	return []FieldError{{Rule: "body", Message: "request body could not be decoded"}}
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

// jsonPathFromValidatorError maps the struct field of a failed rule to its
// json key. Request bodies are flat, so only the field itself is looked up.
func jsonPathFromValidatorError(rootType reflect.Type, fieldError validator.FieldError) string {
	if rootType == nil {
		return fieldError.Field()
	}

	sf, ok := rootType.FieldByName(fieldError.StructField())
	if !ok {
		return fieldError.Field()
	}

	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "notblank":
		return "may not be blank"
	case "username":
		return "may contain only letters, numbers, and @/./+/-/_ characters"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
