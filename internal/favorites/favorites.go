// Package favorites persists the user's starred catalog items. The
// browse screens surface them as a synthesized "Favorites" category at
// the top of each category list and badge starred cells in the grid.
package favorites

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/database"
)

// Service manages the favorites table.
type Service struct {
	db *gorm.DB
}

// NewService creates a favorites service over an open database.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Toggle flips an item's favorite flag and reports the new state.
func (s *Service) Toggle(item content.Item) (bool, error) {
	if s.db == nil {
		return false, fmt.Errorf("database connection is nil")
	}
	key := content.FavoriteKey(item.Kind, item.ID)

	var existing database.Favorite
	err := s.db.Where("key = ?", key).First(&existing).Error
	switch {
	case err == nil:
		if err := s.db.Delete(&existing).Error; err != nil {
			return true, err
		}
		return false, nil
	case err == gorm.ErrRecordNotFound:
		row := database.Favorite{
			Key:    key,
			Kind:   string(item.Kind),
			ItemID: item.ID,
			Name:   item.Name,
		}
		if err := s.db.Create(&row).Error; err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

// IsFavorite reports whether the item is starred.
func (s *Service) IsFavorite(kind content.Kind, id string) bool {
	if s.db == nil {
		return false
	}
	var count int64
	s.db.Model(&database.Favorite{}).
		Where("key = ?", content.FavoriteKey(kind, id)).
		Count(&count)
	return count > 0
}

// Keys returns the set of favorite keys for one content kind, for
// badge rendering without a query per cell.
func (s *Service) Keys(kind content.Kind) (map[string]bool, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	var rows []database.Favorite
	if err := s.db.Where("kind = ?", string(kind)).Find(&rows).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(rows))
	for _, r := range rows {
		set[r.Key] = true
	}
	return set, nil
}

// IDs returns the favorited item ids for one kind, newest first. The
// browse screen intersects these with the portal catalog to build the
// synthesized Favorites category.
func (s *Service) IDs(kind content.Kind) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	var rows []database.Favorite
	err := s.db.Where("kind = ?", string(kind)).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ItemID)
	}
	return ids, nil
}
