package sign

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Published AWS Signature Version 4 test-suite credentials and clock.
var (
	suiteCreds = Credentials{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		Region:          "us-east-1",
		Service:         "service",
	}
	suiteTime = time.Date(2015, 8, 30, 12, 36, 0, 0, time.UTC)
)

// emptyBodySHA256 is the SHA-256 of the empty string.
const emptyBodySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestSignGetVanilla(t *testing.T) {
	t.Parallel()

	// The "get-vanilla" vector from the AWS SigV4 test suite.
	result := Sign(Input{
		Method: "GET",
		Host:   "example.amazonaws.com",
		Path:   "/",
		Headers: map[string]string{
			"X-Amz-Date": "20150830T123600Z",
		},
	}, suiteCreds, suiteTime)

	assert.Equal(t, "20150830T123600Z", result.AmzDate)
	assert.Equal(t, emptyBodySHA256, result.ContentSHA256)
	assert.Equal(t,
		"AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20150830/us-east-1/service/aws4_request, "+
			"SignedHeaders=host;x-amz-date, "+
			"Signature=5fa00fa31553b73ebf1942676e86291e8372ff2a2260956d9b8aae1d763fbf31",
		result.Authorization)
}

func TestSignDeterministic(t *testing.T) {
	t.Parallel()

	in := Input{
		Method: "POST",
		Host:   "api.example.com",
		Path:   "/v1/items",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: []byte(`{"id":101}`),
	}

	first := Sign(in, suiteCreds, suiteTime)
	second := Sign(in, suiteCreds, suiteTime)
	assert.Equal(t, first, second)
}

func TestSignHeaderSensitivity(t *testing.T) {
	t.Parallel()

	base := Input{
		Method:  "GET",
		Host:    "api.example.com",
		Path:    "/",
		Headers: map[string]string{"X-Custom": "one"},
	}
	changed := Input{
		Method:  "GET",
		Host:    "api.example.com",
		Path:    "/",
		Headers: map[string]string{"X-Custom": "two"},
	}

	a := Sign(base, suiteCreds, suiteTime)
	b := Sign(changed, suiteCreds, suiteTime)
	assert.NotEqual(t, a.Authorization, b.Authorization)
}

func TestSignEmptyBodyHash(t *testing.T) {
	t.Parallel()

	result := Sign(Input{
		Method: "GET",
		Host:   "api.example.com",
		Path:   "/",
	}, suiteCreds, suiteTime)

	// Empty/absent bodies still hash to a defined value, never omitted.
	assert.Equal(t, emptyBodySHA256, result.ContentSHA256)
}

func TestSignCanonicalization(t *testing.T) {
	t.Parallel()

	// Mixed-case names and padded values must canonicalize identically.
	messy := Sign(Input{
		Method: "GET",
		Host:   "api.example.com",
		Path:   "/",
		Headers: map[string]string{
			"X-Custom-Header": "  padded  ",
		},
	}, suiteCreds, suiteTime)
	clean := Sign(Input{
		Method: "GET",
		Host:   "api.example.com",
		Path:   "/",
		Headers: map[string]string{
			"x-custom-header": "padded",
		},
	}, suiteCreds, suiteTime)

	assert.Equal(t, clean.Authorization, messy.Authorization)
	assert.Contains(t, messy.Authorization, "SignedHeaders=host;x-custom-header,")
}

func TestSignHostFromInput(t *testing.T) {
	t.Parallel()

	// Host supplied via the Host field and via an explicit header sign the same.
	viaField := Sign(Input{
		Method: "GET",
		Host:   "api.example.com",
		Path:   "/",
	}, suiteCreds, suiteTime)
	viaHeader := Sign(Input{
		Method:  "GET",
		Path:    "/",
		Headers: map[string]string{"Host": "api.example.com"},
	}, suiteCreds, suiteTime)

	require.Equal(t, viaField.Authorization, viaHeader.Authorization)
}
