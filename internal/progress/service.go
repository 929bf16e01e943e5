package progress

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/database"
)

// completion threshold: at or past this percentage a title counts as
// watched and drops off the continue-watching shelf.
const completedPercent = 90.0

// resumableMinimum: entries with less watched time than this are noise
// (channel zapping, accidental plays) and are not offered for resume.
const resumableMinimum = 30 * time.Second

// Service is the watch-progress tracker. Records persist until
// explicitly cleared; there is no automatic pruning.
type Service struct {
	db *gorm.DB
}

// Meta carries the context stored alongside a progress record so the
// continue-watching shelf can rebuild intents without refetching.
type Meta struct {
	Title          string
	Kind           content.Kind
	SeriesID       string
	SeriesName     string
	Season         int
	EpisodeID      string
	EpisodeNumber  int
	NextEpisodeID  string
	NextEpisodeNum int
	Extension      string
}

// Record is a watch-progress row with computed fields.
type Record struct {
	Key            string
	Title          string
	Kind           content.Kind
	SeriesID       string
	SeriesName     string
	Season         int
	EpisodeID      string
	EpisodeNumber  int
	CurrentTime    time.Duration
	Duration       time.Duration
	PercentWatched float64
	Completed      bool
	LastWatchedAt  time.Time
	NextEpisodeID  string
	NextEpisodeNum int
	Extension      string
}

// NewService creates a watch-progress service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Save upserts the record for key, deriving percentWatched and the
// completion flag. Writes are throttled by the caller (the playback
// engine ticks), not here.
func (s *Service) Save(key string, current, total time.Duration, meta Meta) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if total <= 0 {
		return fmt.Errorf("invalid duration %v for %s", total, key)
	}

	percent := current.Seconds() / total.Seconds() * 100
	row := database.WatchProgress{
		Key:             key,
		Kind:            string(meta.Kind),
		Title:           meta.Title,
		SeriesID:        meta.SeriesID,
		SeriesName:      meta.SeriesName,
		Season:          meta.Season,
		EpisodeID:       meta.EpisodeID,
		EpisodeNumber:   meta.EpisodeNumber,
		CurrentSeconds:  int(current.Seconds()),
		TotalSeconds:    int(total.Seconds()),
		PercentWatched:  percent,
		Completed:       percent >= completedPercent,
		LastWatchedAt:   time.Now(),
		NextEpisodeID:   meta.NextEpisodeID,
		NextEpisodeNum:  meta.NextEpisodeNum,
		StreamExtension: meta.Extension,
	}

	var existing database.WatchProgress
	err := s.db.Where("key = ?", key).First(&existing).Error
	if err == nil {
		row.ID = existing.ID
		return s.db.Save(&row).Error
	}
	return s.db.Create(&row).Error
}

// Get returns the record for key, or nil when none exists.
func (s *Service) Get(key string) (*Record, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	var row database.WatchProgress
	if err := s.db.Where("key = ?", key).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	rec := toRecord(row)
	return &rec, nil
}

// Resumable returns all non-completed records with more than 30
// seconds watched, most recent first — the continue-watching shelf.
func (s *Service) Resumable() ([]Record, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	var rows []database.WatchProgress
	err := s.db.
		Where("completed = ? AND current_seconds > ?", false, int(resumableMinimum.Seconds())).
		Order("last_watched_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resumable records: %w", err)
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = toRecord(row)
	}
	return records, nil
}

// BySeries returns every record for a series, most recent first. The
// details screen uses it for watched badges and the resume action.
func (s *Service) BySeries(seriesID string) ([]Record, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	var rows []database.WatchProgress
	err := s.db.
		Where("series_id = ?", seriesID).
		Order("last_watched_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch series records: %w", err)
	}
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = toRecord(row)
	}
	return records, nil
}

// Delete removes the record for key.
func (s *Service) Delete(key string) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Where("key = ?", key).Delete(&database.WatchProgress{}).Error
}

// ClearAll wipes every progress record.
func (s *Service) ClearAll() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Where("1 = 1").Delete(&database.WatchProgress{}).Error
}

func toRecord(row database.WatchProgress) Record {
	return Record{
		Key:            row.Key,
		Title:          row.Title,
		Kind:           content.Kind(row.Kind),
		SeriesID:       row.SeriesID,
		SeriesName:     row.SeriesName,
		Season:         row.Season,
		EpisodeID:      row.EpisodeID,
		EpisodeNumber:  row.EpisodeNumber,
		CurrentTime:    time.Duration(row.CurrentSeconds) * time.Second,
		Duration:       time.Duration(row.TotalSeconds) * time.Second,
		PercentWatched: row.PercentWatched,
		Completed:      row.Completed,
		LastWatchedAt:  row.LastWatchedAt,
		NextEpisodeID:  row.NextEpisodeID,
		NextEpisodeNum: row.NextEpisodeNum,
		Extension:      row.StreamExtension,
	}
}

// Remaining returns the unwatched time left in a record.
func (r Record) Remaining() time.Duration {
	if r.Duration <= r.CurrentTime {
		return 0
	}
	return r.Duration - r.CurrentTime
}

// RemainingLabel formats the remaining time as m:ss (or h:mm:ss past
// the hour), e.g. "3:20".
func (r Record) RemainingLabel() string {
	return FormatClock(r.Remaining())
}

// FormatClock renders a duration as m:ss or h:mm:ss.
func FormatClock(d time.Duration) string {
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
