// Package sign implements AWS Signature Version 4 request signing as a pure
// function of the request, the credentials, and a clock reading.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

const algorithm = "AWS4-HMAC-SHA256"

// Credentials are the AWS v4 signing inputs.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Service         string
}

// Input is the request fragment covered by the signature. Path must already
// carry the query string when one should be signed; the canonical query slot
// itself is always left empty. Headers are the headers to sign; the host
// header is filled in from Host when absent.
type Input struct {
	Method  string
	Host    string
	Path    string
	Headers map[string]string
	Body    []byte
}

// Result holds the three headers signing produces. Merging them into the
// outgoing request (overwriting same-named headers) completes the signature.
type Result struct {
	AmzDate       string // x-amz-date
	Authorization string // Authorization
	ContentSHA256 string // x-amz-content-sha256
}

// Sign computes the AWS Signature Version 4 headers for the given request.
// Deterministic: the same input and clock reading always produce the same
// Authorization value. Any deviation in header lowercasing, sort order, or
// whitespace trimming yields a signature the service rejects with 403.
func Sign(in Input, creds Credentials, now time.Time) Result {
	amzDate := now.UTC().Format("20060102T150405Z")
	dateStamp := amzDate[:8]

	canonicalHeaders, signedHeaders := canonicalizeHeaders(in.Headers, in.Host)
	payloadHash := sha256Hex(in.Body)

	// The canonical query string slot is intentionally empty; query
	// parameters participate only through Path.
	canonicalRequest := in.Method + "\n" + in.Path + "\n\n" +
		canonicalHeaders + "\n" + signedHeaders + "\n" + payloadHash

	credentialScope := dateStamp + "/" + creds.Region + "/" + creds.Service + "/aws4_request"
	stringToSign := algorithm + "\n" + amzDate + "\n" + credentialScope + "\n" +
		sha256Hex([]byte(canonicalRequest))

	signingKey := deriveKey(creds.SecretAccessKey, dateStamp, creds.Region, creds.Service)
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	authorization := algorithm +
		" Credential=" + creds.AccessKeyID + "/" + credentialScope +
		", SignedHeaders=" + signedHeaders +
		", Signature=" + signature

	return Result{
		AmzDate:       amzDate,
		Authorization: authorization,
		ContentSHA256: payloadHash,
	}
}

// canonicalizeHeaders lower-cases names, trims values, sorts by name, and
// renders the canonical header block plus the signed-headers list.
func canonicalizeHeaders(headers map[string]string, host string) (string, string) {
	canonical := make(map[string]string, len(headers)+1)
	for name, value := range headers {
		canonical[strings.ToLower(name)] = strings.TrimSpace(value)
	}
	if host != "" {
		if _, ok := canonical["host"]; !ok {
			canonical["host"] = strings.TrimSpace(host)
		}
	}

	names := make([]string, 0, len(canonical))
	for name := range canonical {
		names = append(names, name)
	}
	sort.Strings(names)

	var block strings.Builder
	for _, name := range names {
		block.WriteString(name)
		block.WriteByte(':')
		block.WriteString(canonical[name])
		block.WriteByte('\n')
	}
	return block.String(), strings.Join(names, ";")
}

// deriveKey performs the chained HMAC key derivation.
func deriveKey(secret, dateStamp, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), dateStamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, "aws4_request")
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
