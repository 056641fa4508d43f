package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soteriahealth/soteria/milestones"
	"github.com/soteriahealth/soteria/models"
	"github.com/soteriahealth/soteria/stats"
)

// ExecutionSessions tracks the ephemeral "routine in progress" signal the
// avatar uses for its Awakening state.
type ExecutionSessions interface {
	Start(ctx context.Context, userID uuid.UUID, c stats.Category) error
	Stop(ctx context.Context, userID uuid.UUID, c stats.Category) error
	Active(ctx context.Context, userID uuid.UUID) (map[stats.Category]bool, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// Cache is a best-effort read cache. Misses and failures are never errors.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) bool
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration)
	InvalidatePrefix(ctx context.Context, prefix string)
}

// EngineConfig carries the collaborators of the engine. Nil Sessions and
// Cache disable those features.
type EngineConfig struct {
	Catalog         *milestones.Catalog
	Clock           stats.Clock
	Sessions        ExecutionSessions
	Cache           Cache
	CacheTTL        time.Duration
	DefaultTimezone string
}

// Engine owns the daily progress, streak, harmony, avatar, milestone and
// reset operations for every user.
type Engine struct {
	db       *gorm.DB
	catalog  *milestones.Catalog
	clock    stats.Clock
	sessions ExecutionSessions
	cache    Cache
	cacheTTL time.Duration
	tz       string
}

// NewEngine creates an engine on top of db.
func NewEngine(db *gorm.DB, cfg EngineConfig) *Engine {
	if cfg.Catalog == nil {
		cfg.Catalog = milestones.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = stats.RealClock{}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &Engine{
		db:       db,
		catalog:  cfg.Catalog,
		clock:    cfg.Clock,
		sessions: cfg.Sessions,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		tz:       cfg.DefaultTimezone,
	}
}

// Catalog exposes the milestone catalog the engine evaluates.
func (e *Engine) Catalog() *milestones.Catalog { return e.catalog }

// Today resolves the user's current local date.
func (e *Engine) Today(ctx context.Context, userID uuid.UUID) (stats.Date, error) {
	loc, err := e.location(e.db.WithContext(ctx), userID)
	if err != nil {
		return "", storageErr("resolve today", err)
	}
	return stats.LocalDate(e.clock.Now(), loc), nil
}

// location reads the user's timezone without creating a profile.
func (e *Engine) location(tx *gorm.DB, userID uuid.UUID) (*time.Location, error) {
	var p models.Profile
	err := tx.Where("id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return stats.LoadLocation(e.tz), nil
	}
	if err != nil {
		return nil, err
	}
	return p.Location(e.tz), nil
}

func requireUser(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return invalid("user_id", "missing")
	}
	return nil
}

func cacheKeyPrefix(userID uuid.UUID) string {
	return "soteria:user:" + userID.String() + ":"
}

func (e *Engine) invalidate(ctx context.Context, userID uuid.UUID) {
	if e.cache != nil {
		e.cache.InvalidatePrefix(ctx, cacheKeyPrefix(userID))
	}
}
