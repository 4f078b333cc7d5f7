package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"slices"
	"strconv"
	"strings"

	"busline/shared/constant"
	"busline/shared/failure"

	val "github.com/go-playground/validator/v10"
)

// enum is implemented by closed string types such as booking and schedule statuses.
type enum interface {
	Valid() bool
}

const bytesPerMB = 1024 * 1024

var validate *val.Validate

// fileHeader accepts both value and pointer fields; the validator hands over the dereferenced value.
func fileHeader(field val.FieldLevel) (multipart.FileHeader, bool) {
	file, ok := field.Field().Interface().(multipart.FileHeader)

	return file, ok
}

// validateMimetypes checks the declared Content-Type of an uploaded part against a space separated list.
func validateMimetypes(field val.FieldLevel) bool {
	file, ok := fileHeader(field)
	if !ok {
		return false
	}

	return slices.Contains(strings.Fields(field.Param()), file.Header.Get(constant.RequestHeaderContentType))
}

// validateMaxFileSize takes its limit in megabytes.
func validateMaxFileSize(field val.FieldLevel) bool {
	file, ok := fileHeader(field)
	if !ok {
		return false
	}

	maxSizeMB, err := strconv.ParseFloat(field.Param(), 64)
	if err != nil {
		return false
	}

	return float64(file.Size) <= maxSizeMB*bytesPerMB
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	err := validate.RegisterValidation("enum", func(fl val.FieldLevel) bool {
		if value, ok := fl.Field().Interface().(enum); ok {
			return value.Valid()
		}

		return false
	})

	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("empty", func(fl val.FieldLevel) bool {
		empty := fl.Field().IsZero()

		return empty
	})

	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("mimetypes", validateMimetypes)
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("maxfilesize", validateMaxFileSize)
	if err != nil {
		panic(err)
	}
}

// Validate decodes a JSON request body into data and validates it. Every failure is a bad request.
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
