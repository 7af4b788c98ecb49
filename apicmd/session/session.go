package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gcnwokike/API-Commander/apicmd/request"
)

// keyPrefix marks session records in storage; anything else under the same
// backend (such as the meta record) is not a session.
const keyPrefix = "session_"

// Session is one persisted request workspace.
type Session struct {
	Key       string        `msgpack:"k"`
	Name      string        `msgpack:"n"`
	Timestamp int64         `msgpack:"t"` // last modified, unix milliseconds
	State     *request.Spec `msgpack:"s"`
}

// NewKey generates a storage key ordered by creation time. The random suffix
// keeps two sessions created within the same millisecond distinct.
func NewKey(now time.Time) string {
	return fmt.Sprintf("%s%d_%s", keyPrefix, now.UnixMilli(), uuid.NewString()[:8])
}

// IsSessionKey reports whether key names a session record.
func IsSessionKey(key string) bool {
	return strings.HasPrefix(key, keyPrefix)
}
