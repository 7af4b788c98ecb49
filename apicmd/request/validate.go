package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

// Validation errors block the send action with a user-facing message but
// never corrupt state; they are advisory and re-checked on every send.
var (
	ErrInvalidURL        = errors.New("invalid URL format")
	ErrInvalidJSONBody   = errors.New("invalid JSON in request body")
	ErrMissingAwsCreds   = errors.New("AWS v4 requires Access Key and Secret Key")
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
	ErrUnsupportedBody   = errors.New("unsupported body type")
	ErrUnsupportedAuth   = errors.New("unsupported auth type")
)

// IsValidJSON reports whether s parses as JSON. Blank input is considered
// valid: an empty body is sendable.
func IsValidJSON(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	return json.Valid([]byte(s))
}

// PrettifyJSON re-indents a JSON document with two-space indentation.
func PrettifyJSON(s string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Validate runs the advisory pre-send checks: parsable URL, valid JSON when
// the JSON body variant is selected, and complete AWS credentials when AWS
// signing is selected. Other body content is sent as-is.
func (s *Spec) Validate() error {
	if !s.Method.Valid() {
		return ErrUnsupportedMethod
	}
	if !s.Body.Type.Valid() {
		return ErrUnsupportedBody
	}
	if !s.Auth.Type.Valid() {
		return ErrUnsupportedAuth
	}

	if u, err := url.Parse(s.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidURL
	}

	if s.Body.Type == BodyJSON && !IsValidJSON(s.Body.JSONContent) {
		return ErrInvalidJSONBody
	}

	if s.Auth.Type == AuthAwsV4 && (s.Auth.Aws.AccessKeyID == "" || s.Auth.Aws.SecretAccessKey == "") {
		return ErrMissingAwsCreds
	}

	return nil
}
