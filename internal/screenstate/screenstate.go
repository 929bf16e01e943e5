// Package screenstate persists per-screen navigation focus so a screen
// reopens where the user left it. States are written on navigate-away
// and clamped against freshly loaded data when applied.
package screenstate

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teleview/teleview/internal/database"
)

// State is one screen's saved focus.
type State struct {
	CategoryID    string
	CategoryFocus int
	Page          int
	ItemFocus     int
}

// Store reads and writes screen states.
type Store struct {
	db *gorm.DB
}

// NewStore creates a screen-state store over an open database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Load returns the saved state for a screen, or nil when none exists.
func (s *Store) Load(screen string) (*State, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	var row database.ScreenState
	err := s.db.Where("screen = ?", screen).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &State{
		CategoryID:    row.CategoryID,
		CategoryFocus: row.CategoryFocus,
		Page:          row.Page,
		ItemFocus:     row.ItemFocus,
	}, nil
}

// Save upserts a screen's state.
func (s *Store) Save(screen string, st State) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	row := database.ScreenState{
		Screen:        screen,
		CategoryID:    st.CategoryID,
		CategoryFocus: st.CategoryFocus,
		Page:          st.Page,
		ItemFocus:     st.ItemFocus,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "screen"}},
		UpdateAll: true,
	}).Create(&row).Error
}

// Clear drops all saved states (used on logout).
func (s *Store) Clear() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Where("1 = 1").Delete(&database.ScreenState{}).Error
}
