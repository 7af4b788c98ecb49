package request

import "github.com/gcnwokike/API-Commander/apicmd/config"

// AuthType selects the authentication scheme applied at build time.
type AuthType string

const (
	AuthNone   AuthType = "None"
	AuthBasic  AuthType = "Basic"
	AuthBearer AuthType = "Bearer"
	AuthAwsV4  AuthType = "AWS v4"
)

// Valid reports whether t is a supported auth scheme.
func (t AuthType) Valid() bool {
	switch t {
	case AuthNone, AuthBasic, AuthBearer, AuthAwsV4:
		return true
	}
	return false
}

// BasicAuth holds HTTP Basic credentials. Empty strings are valid: the
// colon-joined pair is encoded as-is.
type BasicAuth struct {
	Username string `json:"username" msgpack:"u"`
	Password string `json:"password" msgpack:"p"`
}

// BearerAuth holds a bearer token.
type BearerAuth struct {
	Token string `json:"token" msgpack:"t"`
}

// AwsAuth holds AWS Signature Version 4 credentials.
type AwsAuth struct {
	AccessKeyID     string `json:"accessKeyId" msgpack:"a"`
	SecretAccessKey string `json:"secretAccessKey" msgpack:"s"`
	Region          string `json:"region" msgpack:"r"`
	Service         string `json:"service" msgpack:"v"`
}

// AuthConfig is the auth selection plus every variant's last-edited payload.
// Only the variant named by Type is applied; the others are retained so
// switching schemes never loses input.
type AuthConfig struct {
	Type   AuthType   `json:"type" msgpack:"t"`
	Basic  BasicAuth  `json:"basic" msgpack:"b"`
	Bearer BearerAuth `json:"bearer" msgpack:"e"`
	Aws    AwsAuth    `json:"aws" msgpack:"a"`
}

// BodyType selects the body encoding applied at build time.
type BodyType string

const (
	BodyJSON    BodyType = "JSON"
	BodyText    BodyType = "Text"
	BodyXML     BodyType = "XML"
	BodyForm    BodyType = "Form"
	BodyFormURL BodyType = "Form-encode"
	BodyBinary  BodyType = "Binary"
)

// Valid reports whether t is a supported body encoding.
func (t BodyType) Valid() bool {
	switch t {
	case BodyJSON, BodyText, BodyXML, BodyForm, BodyFormURL, BodyBinary:
		return true
	}
	return false
}

// BodyConfig is the body selection plus every variant's last-edited payload,
// retained across tab switches the same way AuthConfig retains its variants.
type BodyConfig struct {
	Type        BodyType `json:"type" msgpack:"t"`
	JSONContent string   `json:"jsonContent" msgpack:"j"`
	TextContent string   `json:"textContent" msgpack:"x"`
	XMLContent  string   `json:"xmlContent" msgpack:"m"`
	FormData    FormList `json:"formData" msgpack:"f"`
	FormEncoded KVList   `json:"formEncodedData" msgpack:"u"`
	BinaryFile  *FileRef `json:"binaryFile" msgpack:"b"`
}

// Spec is the full editable description of one HTTP request before it is
// sent. It is what sessions persist and what Build consumes.
type Spec struct {
	Method         Method     `json:"httpMethod" msgpack:"m"`
	URL            string     `json:"url" msgpack:"u"`
	QueryParams    KVList     `json:"queryParams" msgpack:"q"`
	Headers        KVList     `json:"headers" msgpack:"h"`
	Cookies        KVList     `json:"requestCookies" msgpack:"c"`
	RawHeadersMode bool       `json:"isRawHeaders" msgpack:"r"`
	RawHeadersText string     `json:"rawHeadersText" msgpack:"w"`
	Auth           AuthConfig `json:"authConfig" msgpack:"a"`
	Body           BodyConfig `json:"bodyConfig" msgpack:"b"`
}

// DefaultSpec returns the state a fresh session starts from: POST, a
// User-Agent header ahead of the blank sentinel, and a JSON body prompt.
func DefaultSpec() *Spec {
	ua := NewEntry()
	ua.Key = "User-Agent"
	ua.Value = config.DefaultUserAgent

	return &Spec{
		Method:      MethodPost,
		QueryParams: NewKVList(),
		Headers:     KVList{ua, NewEntry()},
		Cookies:     NewKVList(),
		Auth:        AuthConfig{Type: AuthNone},
		Body: BodyConfig{
			Type:        BodyJSON,
			JSONContent: "{\n  \"id\": 101\n}",
			FormData:    NewFormList(),
			FormEncoded: NewKVList(),
		},
	}
}

// Normalize restores list invariants after deserialization or direct edits.
func (s *Spec) Normalize() {
	s.QueryParams.Normalize()
	s.Headers.Normalize()
	s.Cookies.Normalize()
	s.Body.FormData.Normalize()
	s.Body.FormEncoded.Normalize()
	if s.Auth.Type == "" {
		s.Auth.Type = AuthNone
	}
	if s.Body.Type == "" {
		s.Body.Type = BodyJSON
	}
}

// RegenerateIDs assigns fresh entry IDs across all lists. Used on import.
func (s *Spec) RegenerateIDs() {
	s.QueryParams.RegenerateIDs()
	s.Headers.RegenerateIDs()
	s.Cookies.RegenerateIDs()
	s.Body.FormData.RegenerateIDs()
	s.Body.FormEncoded.RegenerateIDs()
}

// SnapshotRawHeaders turns the current enabled header entries into raw
// colon-delimited text and switches raw mode on. One-way conversion: list
// and text are synced only at this toggle moment, and disabled or blank
// entries are dropped from the snapshot.
func (s *Spec) SnapshotRawHeaders() {
	s.RawHeadersMode = true
	text := ""
	for _, h := range s.Headers.Active() {
		if text != "" {
			text += "\n"
		}
		text += h.Key + ": " + h.Value
	}
	s.RawHeadersText = text
}
