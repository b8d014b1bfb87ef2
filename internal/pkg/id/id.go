package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID. Temp-info records key on these; the embedded
// timestamp makes stale staging rows easy to spot when debugging a table.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
