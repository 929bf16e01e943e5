package database

import (
	"time"

	"gorm.io/gorm"
)

// WatchProgress records per-title playback position for resume
// semantics. Keys are movie:{id} or series:{id}:{season}:{episode}.
type WatchProgress struct {
	ID              uint      `gorm:"primaryKey"`
	Key             string    `gorm:"not null;uniqueIndex"`
	Kind            string    `gorm:"not null;index"` // movie, series
	Title           string    `gorm:"not null"`
	SeriesID        string    `gorm:"index;default:''"`
	SeriesName      string    `gorm:"default:''"`
	Season          int       `gorm:"default:0"`
	EpisodeID       string    `gorm:"default:''"`
	EpisodeNumber   int       `gorm:"default:0"`
	CurrentSeconds  int       `gorm:"not null"`
	TotalSeconds    int       `gorm:"not null"`
	PercentWatched  float64   `gorm:"not null"`
	Completed       bool      `gorm:"default:false;index"`
	LastWatchedAt   time.Time `gorm:"index;default:CURRENT_TIMESTAMP"`
	NextEpisodeID   string    `gorm:"default:''"`
	NextEpisodeNum  int       `gorm:"default:0"`
	StreamExtension string    `gorm:"default:''"`
}

// TableName overrides the table name
func (WatchProgress) TableName() string {
	return "watch_progress"
}

// Favorite marks a catalog item as favorited, keyed {kind}_{id}.
type Favorite struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"not null;uniqueIndex"`
	Kind      string    `gorm:"not null;index"`
	ItemID    string    `gorm:"not null"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

// TableName overrides the table name
func (Favorite) TableName() string {
	return "favorites"
}

// ScreenState is the per-screen navigation restore blob: selected
// category, page and focus indices, saved on navigate-away and clamped
// against the freshly loaded data on return.
type ScreenState struct {
	Screen        string    `gorm:"primaryKey"`
	CategoryID    string    `gorm:"default:''"`
	CategoryFocus int       `gorm:"default:0"`
	Page          int       `gorm:"default:0"`
	ItemFocus     int       `gorm:"default:0"`
	UpdatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

// TableName overrides the table name
func (ScreenState) TableName() string {
	return "screen_states"
}

// Setting is the key-value store backing the session context (auth
// token, group code, accepted-terms flag, device id).
type Setting struct {
	Key       string    `gorm:"primaryKey"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

// TableName overrides the table name
func (Setting) TableName() string {
	return "settings"
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&WatchProgress{},
		&Favorite{},
		&ScreenState{},
		&Setting{},
	)
}
