package request

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gcnwokike/API-Commander/apicmd/sign"
)

// ErrFileNotReadable wraps failures to load a referenced file's bytes.
var ErrFileNotReadable = errors.New("referenced file is not readable")

// Builder turns a Spec into a wire-ready request. The zero value is usable;
// ReadFile may be overridden to supply file bytes from somewhere other than
// the local file system.
type Builder struct {
	ReadFile func(path string) ([]byte, error)
}

// Build is a convenience wrapper around the zero Builder.
func Build(spec *Spec, now time.Time) (*Prepared, error) {
	return Builder{}.Build(spec, now)
}

// Build resolves the URL, assembles headers and cookies, injects auth,
// materializes the body, and finalizes AWS v4 signing when selected.
// Pure apart from reading referenced file bytes.
func (b Builder) Build(spec *Spec, now time.Time) (*Prepared, error) {
	u, err := url.Parse(spec.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ErrInvalidURL
	}
	applyQueryParams(u, spec.QueryParams)

	prepared := &Prepared{
		Method: spec.Method,
		URL:    u.String(),
	}

	assembleHeaders(prepared, spec)
	assembleCookies(prepared, spec.Cookies)

	switch spec.Auth.Type {
	case AuthBasic:
		// Empty username/password are valid per the colon-joined encoding.
		raw := spec.Auth.Basic.Username + ":" + spec.Auth.Basic.Password
		prepared.Headers.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(raw)))
	case AuthBearer:
		if spec.Auth.Bearer.Token != "" {
			prepared.Headers.Set("Authorization", "Bearer "+spec.Auth.Bearer.Token)
		}
	}

	if spec.Method.HasBody() {
		if err := b.materializeBody(prepared, spec); err != nil {
			return nil, err
		}
	}

	if spec.Auth.Type == AuthAwsV4 {
		if err := finalizeAwsSigning(prepared, spec, u, now); err != nil {
			return nil, err
		}
	}

	return prepared, nil
}

// applyQueryParams appends enabled non-empty-key params in list order,
// preserving duplicate keys as repeated parameters.
func applyQueryParams(u *url.URL, params KVList) {
	var query strings.Builder
	query.WriteString(u.RawQuery)
	for _, p := range params.Active() {
		if query.Len() > 0 {
			query.WriteByte('&')
		}
		query.WriteString(url.QueryEscape(p.Key))
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(p.Value))
	}
	u.RawQuery = query.String()
}

// assembleHeaders fills the header set from either the raw text or the
// entry list, depending on the configured mode.
func assembleHeaders(prepared *Prepared, spec *Spec) {
	if spec.RawHeadersMode {
		for _, line := range strings.Split(spec.RawHeadersText, "\n") {
			name, value, found := strings.Cut(line, ":")
			if !found {
				continue // lines without a colon are skipped
			}
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			prepared.Headers.Set(name, strings.TrimSpace(value))
		}
		return
	}
	for _, h := range spec.Headers.Active() {
		prepared.Headers.Set(h.Key, h.Value)
	}
}

// assembleCookies synthesizes a single Cookie header from enabled entries,
// joined in list order. Emitted only when at least one has a non-empty key.
func assembleCookies(prepared *Prepared, cookies KVList) {
	active := cookies.Active()
	if len(active) == 0 {
		return
	}
	pairs := make([]string, 0, len(active))
	for _, c := range active {
		pairs = append(pairs, c.Key+"="+c.Value)
	}
	prepared.Headers.Set("Cookie", strings.Join(pairs, "; "))
}

func (b Builder) materializeBody(prepared *Prepared, spec *Spec) error {
	switch spec.Body.Type {
	case BodyJSON:
		prepared.Body = []byte(spec.Body.JSONContent)
		prepared.Headers.SetDefault("Content-Type", "application/json")
	case BodyText:
		prepared.Body = []byte(spec.Body.TextContent)
		prepared.Headers.SetDefault("Content-Type", "text/plain")
	case BodyXML:
		prepared.Body = []byte(spec.Body.XMLContent)
		prepared.Headers.SetDefault("Content-Type", "application/xml")
	case BodyFormURL:
		prepared.Body = []byte(encodeFormURL(spec.Body.FormEncoded))
		prepared.Headers.SetDefault("Content-Type", "application/x-www-form-urlencoded")
	case BodyForm:
		return b.encodeMultipart(prepared, spec.Body.FormData)
	case BodyBinary:
		return b.readBinaryBody(prepared, spec.Body.BinaryFile)
	}
	return nil
}

// encodeFormURL renders key=value&key=value over enabled entries in list
// order, duplicates preserved.
func encodeFormURL(entries KVList) string {
	var body strings.Builder
	for _, e := range entries.Active() {
		if body.Len() > 0 {
			body.WriteByte('&')
		}
		body.WriteString(url.QueryEscape(e.Key))
		body.WriteByte('=')
		body.WriteString(url.QueryEscape(e.Value))
	}
	return body.String()
}

// encodeMultipart writes the multipart body. The encoder owns Content-Type:
// any caller-set value is discarded so the boundary parameter stays
// consistent with the encoded payload.
func (b Builder) encodeMultipart(prepared *Prepared, entries FormList) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, e := range entries.Active() {
		if e.Type == FormFieldFile && e.File != nil {
			content, err := b.readFile(e.File.Path)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrFileNotReadable, e.File.Name, err)
			}

			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, e.Key, e.File.Name))
			if e.File.MIMEType != "" {
				header.Set("Content-Type", e.File.MIMEType)
			}
			part, err := writer.CreatePart(header)
			if err != nil {
				return err
			}
			if _, err := part.Write(content); err != nil {
				return err
			}
		} else {
			if err := writer.WriteField(e.Key, e.Value); err != nil {
				return err
			}
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	prepared.Body = buf.Bytes()
	prepared.Headers.Remove("Content-Type")
	prepared.Headers.Set("Content-Type", writer.FormDataContentType())
	return nil
}

func (b Builder) readBinaryBody(prepared *Prepared, ref *FileRef) error {
	if ref == nil {
		return nil // no file selected, no body
	}
	content, err := b.readFile(ref.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFileNotReadable, ref.Name, err)
	}
	prepared.Body = content

	contentType := ref.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	prepared.Headers.SetDefault("Content-Type", contentType)
	return nil
}

func (b Builder) readFile(path string) ([]byte, error) {
	if b.ReadFile != nil {
		return b.ReadFile(path)
	}
	return os.ReadFile(path)
}

// finalizeAwsSigning runs after headers and body are otherwise complete,
// since the signature covers the whole request. Multipart and binary bodies
// sign the empty payload.
func finalizeAwsSigning(prepared *Prepared, spec *Spec, u *url.URL, now time.Time) error {
	creds := spec.Auth.Aws
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return ErrMissingAwsCreds
	}

	headers := make(map[string]string, len(prepared.Headers))
	for _, h := range prepared.Headers {
		headers[h.Name] = h.Value
	}

	signBody := prepared.Body
	if spec.Body.Type == BodyForm || spec.Body.Type == BodyBinary {
		signBody = nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	result := sign.Sign(sign.Input{
		Method:  string(spec.Method),
		Host:    u.Hostname(),
		Path:    path,
		Headers: headers,
		Body:    signBody,
	}, sign.Credentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		Region:          creds.Region,
		Service:         creds.Service,
	}, now)

	prepared.Headers.Set("x-amz-date", result.AmzDate)
	prepared.Headers.Set("Authorization", result.Authorization)
	prepared.Headers.Set("x-amz-content-sha256", result.ContentSHA256)
	return nil
}
