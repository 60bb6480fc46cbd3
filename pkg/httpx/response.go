package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MaxBodyBytes caps request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

var (
	ErrEmptyBody     = errors.New("request body is empty")
	ErrMalformedBody = errors.New("request body is not valid JSON")
	ErrNotObject     = errors.New("request body is not a JSON object")
)

// ErrorBody is the error envelope every endpoint answers with.
type ErrorBody struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"status":"error","message":msg}.
func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, ErrorBody{Status: StatusError, Message: msg})
}

// WriteFieldErrors writes {"status":"error","errors":{field:[msgs]}}.
func WriteFieldErrors(w http.ResponseWriter, code int, fields map[string][]string) {
	WriteJSON(w, code, ErrorBody{Status: StatusError, Errors: fields})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Every response carrying tokens or profile data needs it.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// DecodeJSON reads at most MaxBodyBytes of a JSON object from r into dst.
// When dst points to a struct, each field is decoded on its own: every field
// holding a value of the wrong type is reported in a FieldTypeErrors while
// the other fields are still filled in. Integer fields also accept numeric
// strings. Unknown fields are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var raw json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: larger than %d bytes", ErrMalformedBody, maxErr.Limit)
		}
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return ErrNotObject
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		return nil
	}

	var typeErrs FieldTypeErrors
	decodeFields(v.Elem(), fields, &typeErrs)
	if len(typeErrs) > 0 {
		return typeErrs
	}
	return nil
}

// decodeFields fills the exported fields of v from fields by json name,
// descending into embedded structs the way encoding/json promotes them.
func decodeFields(v reflect.Value, fields map[string]json.RawMessage, errs *FieldTypeErrors) {
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			decodeFields(v.Field(i), fields, errs)
			continue
		}
		if !f.IsExported() || !v.Field(i).CanSet() {
			continue
		}
		if name == "" {
			name = f.Name
		}

		value, ok := fields[name]
		if !ok {
			continue
		}
		if err := decodeField(v.Field(i), value); err != nil {
			*errs = append(*errs, &FieldTypeError{Field: name, Kind: baseKind(f.Type)})
		}
	}
}

// decodeField leaves field zeroed when value does not fit it.
func decodeField(field reflect.Value, value json.RawMessage) error {
	err := unmarshalField(field, value)
	if err != nil {
		field.SetZero()
	}
	return err
}

func unmarshalField(field reflect.Value, value json.RawMessage) error {
	err := json.Unmarshal(value, field.Addr().Interface())
	if err == nil || !isInteger(baseKind(field.Type())) {
		return err
	}

	var s string
	if json.Unmarshal(value, &s) != nil {
		return err
	}
	n, convErr := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if convErr != nil {
		return err
	}
	return json.Unmarshal(strconv.AppendInt(nil, n, 10), field.Addr().Interface())
}

func baseKind(t reflect.Type) reflect.Kind {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind()
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// FieldTypeError reports a JSON value of the wrong type for a known field,
// such as a string where an integer is expected.
type FieldTypeError struct {
	Field string
	Kind  reflect.Kind
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Message())
}

// Message is the client facing description of the expected type.
func (e *FieldTypeError) Message() string {
	switch {
	case isInteger(e.Kind):
		return "A valid integer is required."
	case e.Kind == reflect.String:
		return "Not a valid string."
	case e.Kind == reflect.Bool:
		return "Must be a valid boolean."
	default:
		return "Invalid value."
	}
}

// FieldTypeErrors is every field of one payload that failed to decode.
type FieldTypeErrors []*FieldTypeError

func (e FieldTypeErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, "; ")
}

// Fields returns the client messages keyed by field name.
func (e FieldTypeErrors) Fields() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, fe := range e {
		out[fe.Field] = append(out[fe.Field], fe.Message())
	}
	return out
}
