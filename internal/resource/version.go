package resource

import (
	"fmt"
	"sync"
	"time"
)

// Version is a monotonically comparable token identifying the most
// recent mutation of a resource. It is rendered as
// "<seconds>:<nanoseconds>" in documents, so two versions can be
// compared lexically by clients that treat it opaquely.
type Version struct {
	Seconds int64
	Nanos   int64
}

// String renders the version in seconds:nanoseconds form.
func (v Version) String() string {
	return fmt.Sprintf("%d:%d", v.Seconds, v.Nanos)
}

// Less reports whether v is strictly older than other.
func (v Version) Less(other Version) bool {
	if v.Seconds != other.Seconds {
		return v.Seconds < other.Seconds
	}
	return v.Nanos < other.Nanos
}

// versionMu serialises version generation so that NewVersion is
// strictly increasing even when the clock has not advanced between
// calls.
var (
	versionMu   sync.Mutex
	lastVersion Version
)

// NewVersion returns a version token strictly greater than any token
// previously returned by this process.
func NewVersion() Version {
	versionMu.Lock()
	defer versionMu.Unlock()

	now := time.Now().UTC()
	v := Version{Seconds: now.Unix(), Nanos: int64(now.Nanosecond())}
	if !lastVersion.Less(v) {
		v = lastVersion
		v.Nanos++
		if v.Nanos >= int64(time.Second) {
			v.Seconds++
			v.Nanos = 0
		}
	}
	lastVersion = v
	return v
}
