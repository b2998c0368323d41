package specification

import "gorm.io/gorm"

// ActiveOnly keeps sessions that have not been ended yet.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("ended_at IS NULL")
}

// BySessionToken filters by the externally exposed session handle.
type BySessionToken struct {
	Token string
}

func (s BySessionToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.Token)
}

// LatestFirst orders sessions newest-started first, the order the session
// resolver relies on.
type LatestFirst struct{}

func (s LatestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("started_at DESC")
}
