package request

import (
	"errors"
	"mime"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpec(method Method, url string) *Spec {
	spec := DefaultSpec()
	spec.Method = method
	spec.URL = url
	spec.Body.JSONContent = ""
	return spec
}

func TestBuild(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	t.Run("invalid_url", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"", "not a url", "example.com/path", "https://"} {
			_, err := Build(testSpec(MethodGet, raw), now)
			assert.ErrorIs(t, err, ErrInvalidURL, raw)
		}
	})

	t.Run("query_params_appended_in_order", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodGet, "https://api.example.com/v1?x=1")
		spec.QueryParams = KVList{
			{ID: "1", Key: "a", Value: "b", Enabled: true},
			{ID: "2", Key: "skip", Value: "me", Enabled: false},
			{ID: "3", Key: "a", Value: "c", Enabled: true},
		}

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/v1?x=1&a=b&a=c", prepared.URL)
	})

	t.Run("query_params_escaped", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodGet, "https://api.example.com/v1")
		spec.QueryParams = KVList{{ID: "1", Key: "q", Value: "a b&c", Enabled: true}}

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/v1?q=a+b%26c", prepared.URL)
	})

	t.Run("get_suppresses_body", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodGet, "https://api.example.com/v1")
		spec.Body.Type = BodyJSON
		spec.Body.JSONContent = `{"id": 101}`

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Nil(t, prepared.Body)
		assert.False(t, prepared.Headers.Has("Content-Type"))
	})

	t.Run("json_body_default_content_type", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodPost, "https://api.example.com/v1")
		spec.Body.Type = BodyJSON
		spec.Body.JSONContent = `{"id": 101}`

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"id": 101}`), prepared.Body)
		assert.Equal(t, "application/json", prepared.Headers.Get("Content-Type"))
	})

	t.Run("explicit_content_type_wins", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodPost, "https://api.example.com/v1")
		spec.Headers = KVList{{ID: "1", Key: "content-type", Value: "application/vnd.custom+json", Enabled: true}}
		spec.Body.Type = BodyJSON
		spec.Body.JSONContent = "{}"

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, "application/vnd.custom+json", prepared.Headers.Get("Content-Type"))
	})

	t.Run("disabled_headers_skipped", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodGet, "https://api.example.com/v1")
		spec.Headers = KVList{
			{ID: "1", Key: "X-On", Value: "1", Enabled: true},
			{ID: "2", Key: "X-Off", Value: "2", Enabled: false},
			{ID: "3", Key: "", Value: "ignored", Enabled: true},
		}

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, "1", prepared.Headers.Get("X-On"))
		assert.False(t, prepared.Headers.Has("X-Off"))
	})

	t.Run("raw_headers_parsed", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodGet, "https://api.example.com/v1")
		spec.RawHeadersMode = true
		spec.RawHeadersText = "X-First: one\nmalformed line without colon\n  X-Second :  two \nX-Url: https://other.example.com:8443/p"

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, "one", prepared.Headers.Get("X-First"))
		assert.Equal(t, "two", prepared.Headers.Get("X-Second"))
		// only the text before the first colon is the name
		assert.Equal(t, "https://other.example.com:8443/p", prepared.Headers.Get("X-Url"))
		assert.Len(t, prepared.Headers, 3)
	})

	t.Run("cookie_header_synthesized", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodGet, "https://api.example.com/v1")
		spec.Cookies = KVList{
			{ID: "1", Key: "session", Value: "abc", Enabled: true},
			{ID: "2", Key: "theme", Value: "dark", Enabled: true},
			{ID: "3", Key: "off", Value: "x", Enabled: false},
		}

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, "session=abc; theme=dark", prepared.Headers.Get("Cookie"))
	})

	t.Run("no_cookie_header_without_entries", func(t *testing.T) {
		t.Parallel()

		prepared, err := Build(testSpec(MethodGet, "https://api.example.com/v1"), now)
		require.NoError(t, err)
		assert.False(t, prepared.Headers.Has("Cookie"))
	})

	t.Run("basic_auth", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodGet, "https://api.example.com/v1")
		spec.Auth.Type = AuthBasic
		spec.Auth.Basic = BasicAuth{Username: "a", Password: "b"}

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, "Basic YTpi", prepared.Headers.Get("Authorization"))
	})

	t.Run("basic_auth_empty_credentials", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodGet, "https://api.example.com/v1")
		spec.Auth.Type = AuthBasic

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, "Basic Og==", prepared.Headers.Get("Authorization"))
	})

	t.Run("bearer_auth", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodGet, "https://api.example.com/v1")
		spec.Auth.Type = AuthBearer
		spec.Auth.Bearer.Token = "tok123"

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok123", prepared.Headers.Get("Authorization"))
	})

	t.Run("bearer_auth_empty_token_omitted", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodGet, "https://api.example.com/v1")
		spec.Auth.Type = AuthBearer

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.False(t, prepared.Headers.Has("Authorization"))
	})

	t.Run("form_encoded_body", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodPost, "https://api.example.com/v1")
		spec.Body.Type = BodyFormURL
		spec.Body.FormEncoded = KVList{
			{ID: "1", Key: "a", Value: "1 2", Enabled: true},
			{ID: "2", Key: "a", Value: "3", Enabled: true},
		}

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, "a=1+2&a=3", string(prepared.Body))
		assert.Equal(t, "application/x-www-form-urlencoded", prepared.Headers.Get("Content-Type"))
	})

	t.Run("multipart_body", func(t *testing.T) {
		t.Parallel()

		builder := Builder{ReadFile: func(path string) ([]byte, error) {
			require.Equal(t, "/tmp/report.pdf", path)
			return []byte("pdf-bytes"), nil
		}}

		spec := testSpec(MethodPost, "https://api.example.com/upload")
		spec.Headers = KVList{{ID: "1", Key: "Content-Type", Value: "text/plain", Enabled: true}}
		spec.Body.Type = BodyForm
		spec.Body.FormData = FormList{
			{ID: "1", Key: "note", Value: "hello", Type: FormFieldText, Enabled: true},
			{
				ID: "2", Key: "doc", Type: FormFieldFile, Enabled: true,
				File: &FileRef{Name: "report.pdf", MIMEType: "application/pdf", Path: "/tmp/report.pdf"},
			},
		}

		prepared, err := builder.Build(spec, now)
		require.NoError(t, err)

		// the caller-set Content-Type must be replaced by the encoder's
		contentType := prepared.Headers.Get("Content-Type")
		mediaType, params, err := mime.ParseMediaType(contentType)
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		reader := multipart.NewReader(strings.NewReader(string(prepared.Body)), params["boundary"])
		form, err := reader.ReadForm(1 << 20)
		require.NoError(t, err)
		assert.Equal(t, []string{"hello"}, form.Value["note"])
		require.Len(t, form.File["doc"], 1)
		assert.Equal(t, "report.pdf", form.File["doc"][0].Filename)
		assert.Equal(t, "application/pdf", form.File["doc"][0].Header.Get("Content-Type"))
	})

	t.Run("multipart_unreadable_file", func(t *testing.T) {
		t.Parallel()

		builder := Builder{ReadFile: func(string) ([]byte, error) {
			return nil, errors.New("permission denied")
		}}

		spec := testSpec(MethodPost, "https://api.example.com/upload")
		spec.Body.Type = BodyForm
		spec.Body.FormData = FormList{
			{ID: "1", Key: "doc", Type: FormFieldFile, Enabled: true, File: &FileRef{Name: "x", Path: "/nope"}},
		}

		_, err := builder.Build(spec, now)
		assert.ErrorIs(t, err, ErrFileNotReadable)
	})

	t.Run("binary_body", func(t *testing.T) {
		t.Parallel()

		builder := Builder{ReadFile: func(string) ([]byte, error) {
			return []byte{0x1, 0x2}, nil
		}}

		spec := testSpec(MethodPut, "https://api.example.com/blob")
		spec.Body.Type = BodyBinary
		spec.Body.BinaryFile = &FileRef{Name: "img.png", MIMEType: "image/png", Path: "/tmp/img.png"}

		prepared, err := builder.Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x1, 0x2}, prepared.Body)
		assert.Equal(t, "image/png", prepared.Headers.Get("Content-Type"))
	})

	t.Run("binary_body_no_file_selected", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodPut, "https://api.example.com/blob")
		spec.Body.Type = BodyBinary

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Nil(t, prepared.Body)
	})

	t.Run("binary_body_mime_fallback", func(t *testing.T) {
		t.Parallel()

		builder := Builder{ReadFile: func(string) ([]byte, error) {
			return []byte("data"), nil
		}}

		spec := testSpec(MethodPut, "https://api.example.com/blob")
		spec.Body.Type = BodyBinary
		spec.Body.BinaryFile = &FileRef{Name: "raw", Path: "/tmp/raw"}

		prepared, err := builder.Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", prepared.Headers.Get("Content-Type"))
	})

	t.Run("aws_missing_credentials", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodGet, "https://example.amazonaws.com/")
		spec.Auth.Type = AuthAwsV4
		spec.Auth.Aws = AwsAuth{AccessKeyID: "AKID", Region: "us-east-1", Service: "service"}

		_, err := Build(spec, now)
		assert.ErrorIs(t, err, ErrMissingAwsCreds)
	})

	t.Run("aws_signing_headers_merged", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodGet, "https://example.amazonaws.com/")
		spec.Auth.Type = AuthAwsV4
		spec.Auth.Aws = AwsAuth{
			AccessKeyID:     "AKIDEXAMPLE",
			SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
			Region:          "us-east-1",
			Service:         "service",
		}

		prepared, err := Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, "20260829T120000Z", prepared.Headers.Get("x-amz-date"))
		assert.True(t, strings.HasPrefix(prepared.Headers.Get("Authorization"), "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20260829/us-east-1/service/aws4_request"))
		assert.NotEmpty(t, prepared.Headers.Get("x-amz-content-sha256"))
	})

	t.Run("aws_signing_deterministic", func(t *testing.T) {
		t.Parallel()

		spec := testSpec(MethodGet, "https://example.amazonaws.com/path?a=b")
		spec.Auth.Type = AuthAwsV4
		spec.Auth.Aws = AwsAuth{
			AccessKeyID:     "AKIDEXAMPLE",
			SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
			Region:          "us-east-1",
			Service:         "service",
		}

		first, err := Build(spec, now)
		require.NoError(t, err)
		second, err := Build(spec, now)
		require.NoError(t, err)
		assert.Equal(t, first.Headers.Get("Authorization"), second.Headers.Get("Authorization"))
	})
}
