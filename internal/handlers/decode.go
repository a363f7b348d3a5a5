package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sbilibin2017/gw-auth-manager/internal/models"
)

const maxBodyBytes = 1 << 20

// Validation error types and messages, as reported in HTTPValidationError.
const (
	errTypeMissing         = "missing"
	errTypeJSONInvalid     = "json_invalid"
	errTypeStringType      = "string_type"
	errTypeModelAttributes = "model_attributes_type"

	msgFieldRequired   = "Field required"
	msgJSONDecode      = "JSON decode error"
	msgStringType      = "Input should be a valid string"
	msgModelAttributes = "Input should be a valid dictionary or object to extract fields from"
)

// loginPayload mirrors LoginBody with pointers so that absent and empty
// fields can be told apart.
type loginPayload struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

var loginFields = []string{"username", "password"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func bodyError(msg, typ string, loc ...any) models.ValidationError {
	return models.ValidationError{Loc: append([]any{"body"}, loc...), Msg: msg, Type: typ}
}

// decodeLoginBody reads a LoginBody from the request. Any structural problem
// is reported as a list of validation errors; empty strings are accepted here.
func decodeLoginBody(r *http.Request) (models.LoginBody, []models.ValidationError) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return models.LoginBody{}, []models.ValidationError{bodyError(msgJSONDecode, errTypeJSONInvalid)}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return models.LoginBody{}, []models.ValidationError{bodyError(msgFieldRequired, errTypeMissing)}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return models.LoginBody{}, []models.ValidationError{bodyError(msgJSONDecode, errTypeJSONInvalid, int(syntaxErr.Offset))}
		}
		return models.LoginBody{}, []models.ValidationError{bodyError(msgModelAttributes, errTypeModelAttributes)}
	}

	var payload loginPayload
	targets := map[string]**string{"username": &payload.Username, "password": &payload.Password}
	wrongType := make(map[string]bool)

	for _, name := range loginFields {
		raw, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			wrongType[name] = true
			continue
		}
		*targets[name] = &s
	}

	missing := make(map[string]bool)
	if err := validate.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return models.LoginBody{}, []models.ValidationError{bodyError(msgModelAttributes, errTypeModelAttributes)}
		}
		for _, fe := range verrs {
			missing[fe.Field()] = true
		}
	}

	var errs []models.ValidationError
	for _, name := range loginFields {
		switch {
		case wrongType[name]:
			errs = append(errs, bodyError(msgStringType, errTypeStringType, name))
		case missing[name]:
			errs = append(errs, bodyError(msgFieldRequired, errTypeMissing, name))
		}
	}
	if len(errs) > 0 {
		return models.LoginBody{}, errs
	}

	return models.LoginBody{Username: *payload.Username, Password: *payload.Password}, nil
}
