package poller

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Dedup suppresses re-delivered feed records inside a TTL window. The
// feed has no cursor semantics we can trust across restarts, so
// overlapping polls are expected and cheap to filter here.
type Dedup struct {
	cache *lru.Cache[string, time.Time]
	ttl   time.Duration
}

func NewDedup(maxKeys int, ttl time.Duration) *Dedup {
	if maxKeys <= 0 {
		maxKeys = 4096
	}
	c, _ := lru.New[string, time.Time](maxKeys)
	return &Dedup{cache: c, ttl: ttl}
}

// IsDuplicate reports whether the key was seen inside the TTL, and
// stamps it either way.
func (d *Dedup) IsDuplicate(key string) bool {
	if addedAt, ok := d.cache.Get(key); ok {
		if time.Since(addedAt) < d.ttl {
			return true
		}
	}
	d.cache.Add(key, time.Now())
	return false
}

// BuildDedupKey identifies one occurrence: server, origin, type and the
// start bucketed to a second.
func BuildDedupKey(serverID uuid.UUID, locationID int, typeCode string, start time.Time) string {
	return fmt.Sprintf("%s|%d|%s|%d", serverID, locationID, typeCode, start.Truncate(time.Second).Unix())
}
