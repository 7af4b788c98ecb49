package httpinfo

import "strconv"

// statusMessages maps common HTTP status codes to their standard reason
// phrases for display. Codes outside this table render as the bare number.
var statusMessages = map[int]string{
	100: "Continue",
	101: "Switching Protocols",
	200: "OK",
	201: "Created",
	202: "Accepted",
	204: "No Content",
	301: "Moved Permanently",
	302: "Found",
	304: "Not Modified",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	408: "Request Timeout",
	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
}

// StatusLabel formats a status code with its reason phrase, if known.
func StatusLabel(code int) string {
	if msg, ok := statusMessages[code]; ok {
		return strconv.Itoa(code) + " " + msg
	}
	return strconv.Itoa(code)
}

// Class describes how a status code should be presented.
type Class int

const (
	ClassInfo Class = iota
	ClassSuccess
	ClassWarning
	ClassError
)

// StatusClass buckets a status code for display coloring.
func StatusClass(code int) Class {
	switch {
	case code >= 500:
		return ClassError
	case code >= 400:
		return ClassWarning
	case code >= 200 && code < 300:
		return ClassSuccess
	default:
		return ClassInfo
	}
}
