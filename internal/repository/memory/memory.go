// Package memory contains in-process implementations of repository interfaces.
// They are used when no database is configured and enforce the same unique
// constraints as the PostgreSQL schema, atomically under a mutex.
package memory

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

func newID() (uuid.UUID, error) { return uuid.NewV4() }

func now() time.Time { return time.Now().UTC() }

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
