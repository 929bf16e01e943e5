package session

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleview/teleview/internal/database"
)

// AccountStatus describes what the portal knows about this account.
type AccountStatus string

const (
	// StatusActive means playback credentials resolve and content may
	// be requested.
	StatusActive AccountStatus = "active"
	// StatusPending means the account exists but the group has not
	// approved it yet; the UI polls until it flips.
	StatusPending AccountStatus = "pending"
	// StatusUnconfigured means no group code has been bound; content
	// loading is blocked rather than attempted with invalid
	// credentials.
	StatusUnconfigured AccountStatus = "unconfigured"
	// StatusExpired means the subscription lapsed; triggers forced
	// logout after a user-visible delay.
	StatusExpired AccountStatus = "expired"
)

// Setting keys used in the settings table.
const (
	keyEmail     = "session.email"
	keyToken     = "session.token"
	keyUsername  = "session.username"
	keyPassword  = "session.password"
	keyPortalURL = "session.portal_url"
	keyGroupCode = "session.group_code"
	keyStatus    = "session.status"
	keyTerms     = "session.accepted_terms"
	keyDeviceID  = "session.device_id"
)

// ErrNotAuthenticated is returned by Load when no stored session exists.
var ErrNotAuthenticated = errors.New("no stored session")

// Context is the explicit, injectable session state shared by every
// component that talks to the portal. There are no package-level
// credential bindings; everything flows through an instance of this
// struct.
type Context struct {
	Email    string
	Token    string
	Username string
	Password string
	// PortalURL is the provider base URL bound via the group code,
	// e.g. http://host:port.
	PortalURL     string
	GroupCode     string
	Status        AccountStatus
	AcceptedTerms bool
	DeviceID      string
}

// Store persists session state to the settings table.
type Store struct {
	db *gorm.DB
}

// NewStore creates a session store over the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Load reads the stored session. A missing token yields
// ErrNotAuthenticated with whatever partial state exists (terms flag,
// device id) still populated.
func (s *Store) Load() (*Context, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	ctx := &Context{Status: StatusUnconfigured}
	ctx.Email = s.get(keyEmail)
	ctx.Token = s.get(keyToken)
	ctx.Username = s.get(keyUsername)
	ctx.Password = s.get(keyPassword)
	ctx.PortalURL = s.get(keyPortalURL)
	ctx.GroupCode = s.get(keyGroupCode)
	ctx.AcceptedTerms = s.get(keyTerms) == "true"
	ctx.DeviceID = s.get(keyDeviceID)

	if status := s.get(keyStatus); status != "" {
		ctx.Status = AccountStatus(status)
	}
	if ctx.DeviceID == "" {
		ctx.DeviceID = uuid.NewString()
		_ = s.set(keyDeviceID, ctx.DeviceID)
	}

	if ctx.Token == "" {
		return ctx, ErrNotAuthenticated
	}
	return ctx, nil
}

// Save upserts the full session state.
func (s *Store) Save(ctx *Context) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	pairs := map[string]string{
		keyEmail:     ctx.Email,
		keyToken:     ctx.Token,
		keyUsername:  ctx.Username,
		keyPassword:  ctx.Password,
		keyPortalURL: ctx.PortalURL,
		keyGroupCode: ctx.GroupCode,
		keyStatus:    string(ctx.Status),
		keyTerms:     fmt.Sprintf("%t", ctx.AcceptedTerms),
		keyDeviceID:  ctx.DeviceID,
	}
	for k, v := range pairs {
		if err := s.set(k, v); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}
	return nil
}

// Clear wipes credentials and group binding but keeps the
// accepted-terms flag and device id, which survive logout.
func (s *Store) Clear() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	for _, k := range []string{keyEmail, keyToken, keyUsername, keyPassword, keyPortalURL, keyGroupCode, keyStatus} {
		if err := s.db.Where("key = ?", k).Delete(&database.Setting{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) get(key string) string {
	var setting database.Setting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return ""
	}
	return setting.Value
}

func (s *Store) set(key, value string) error {
	setting := database.Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.Save(&setting).Error
}

// Configured reports whether the context can issue catalog requests.
func (c *Context) Configured() bool {
	return c.PortalURL != "" && c.Username != "" && c.Password != "" && c.Status == StatusActive
}

// PortalHost returns the host part of the portal URL, used when
// composing stream URLs.
func (c *Context) PortalHost() (scheme, host string, err error) {
	u, err := url.Parse(c.PortalURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid portal url %q: %w", c.PortalURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", "", fmt.Errorf("invalid portal url %q", c.PortalURL)
	}
	return u.Scheme, u.Host, nil
}

// NormalizeGroupCode canonicalizes user-entered group codes.
func NormalizeGroupCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
