package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gcnwokike/API-Commander/apicmd/httpinfo"
)

// Response is the decoded result of one send. Body is the decompressed
// payload; Size is the raw byte count as received off the wire.
type Response struct {
	Status     int
	StatusText string
	Proto      string
	Headers    http.Header
	Cookies    []*http.Cookie
	Body       []byte
	Size       int64
	Duration   time.Duration
}

// StatusLine renders "200 OK" style text, preferring the label table over
// whatever the server sent. Codes unknown to the table fall back to the
// server's own reason phrase when one was provided.
func (r *Response) StatusLine() string {
	label := httpinfo.StatusLabel(r.Status)
	if label == strconv.Itoa(r.Status) && r.StatusText != "" {
		return label + " " + r.StatusText
	}
	return label
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return httpinfo.StatusClass(r.Status) == httpinfo.ClassSuccess
}
