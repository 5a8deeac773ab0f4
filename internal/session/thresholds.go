package session

import "time"

// Thresholds holds the inactivity and age limits used to classify session
// health. Dormant and stale compare against last access; MaxAge compares
// against creation time regardless of activity.
type Thresholds struct {
	DormantAfter time.Duration
	StaleAfter   time.Duration
	MaxAge       time.Duration
}

// DefaultThresholds returns the standard classification limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DormantAfter: 10 * time.Minute,
		StaleAfter:   30 * time.Minute,
		MaxAge:       6 * time.Hour,
	}
}

// IsDormant reports whether the session has been inactive longer than the
// dormant threshold.
func (t Thresholds) IsDormant(s *Session, now time.Time) bool {
	return now.Sub(s.LastAccessed) > t.DormantAfter
}

// IsStale reports whether the session has been inactive longer than the
// stale threshold. Stale supersedes dormant.
func (t Thresholds) IsStale(s *Session, now time.Time) bool {
	return now.Sub(s.LastAccessed) > t.StaleAfter
}

// ShouldArchive reports whether the session is old enough to be archived
// automatically, regardless of recent activity.
func (t Thresholds) ShouldArchive(s *Session, now time.Time) bool {
	return now.Sub(s.CreatedAt) > t.MaxAge
}
