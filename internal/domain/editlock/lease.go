package editlock

import "time"

// DefaultDuration is how long an edit claim lasts without a refresh.
const DefaultDuration = 4 * time.Hour

// Lease is an advisory, time-bounded claim to edit a game. It relies on the
// local clock and does not fence stale writers.
type Lease struct {
	Holder    string
	ExpiresAt *time.Time
}

func NewLease(holder string, now time.Time, duration time.Duration) Lease {
	expires := now.Add(duration)
	return Lease{Holder: holder, ExpiresAt: &expires}
}

// IsSet reports whether any lock fields are stored.
func (l Lease) IsSet() bool {
	return l.Holder != "" || l.ExpiresAt != nil
}

func (l Lease) IsHeldBy(userID string) bool {
	return userID != "" && l.Holder == userID
}

// IsExpired is true when no expiry is stored or it is not in the future.
func (l Lease) IsExpired(now time.Time) bool {
	return l.ExpiresAt == nil || !l.ExpiresAt.After(now)
}

// IsActive reports a stored, unexpired lease.
func (l Lease) IsActive(now time.Time) bool {
	return !l.IsExpired(now)
}

func (l Lease) IsLockedByOther(userID string, now time.Time) bool {
	return l.IsActive(now) && !l.IsHeldBy(userID)
}

func (l Lease) Remaining(now time.Time) time.Duration {
	if l.IsExpired(now) {
		return 0
	}
	return l.ExpiresAt.Sub(now)
}

func (l Lease) Clone() Lease {
	if l.ExpiresAt == nil {
		return l
	}
	v := *l.ExpiresAt
	return Lease{Holder: l.Holder, ExpiresAt: &v}
}
