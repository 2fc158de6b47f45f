// Package journal stores the console output of the demo components with
// GORM on SQLite. The default DSN is in-memory; the journal exists so the
// pages can show what the browser console would have shown.
package journal

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vesaa/effectlab/internal/hooks"
	"github.com/vesaa/effectlab/internal/models"
)

// Journal is the console store.
type Journal struct {
	db   *gorm.DB
	log  *zap.Logger
	keep int
}

// Open opens the database and runs AutoMigrate. Each (session, route) keeps
// at most keep entries, oldest dropped first; keep <= 0 keeps everything.
func Open(driver, dsn string, keep int, log *zap.Logger) (*Journal, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db_driver %q (use 'sqlite')", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection keeps an in-memory database alive and serialises writers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.ConsoleEntry{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	log.Info("journal opened", zap.String("driver", "sqlite"), zap.String("dsn", dsn))
	return &Journal{db: db, log: log, keep: keep}, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Append stores one entry and trims its (session, route) to the retention
// bound.
func (j *Journal) Append(e *models.ConsoleEntry) error {
	if err := j.db.Create(e).Error; err != nil {
		return err
	}
	if j.keep <= 0 {
		return nil
	}
	return j.trim(e.SessionID, e.Route)
}

// trim deletes everything older than the newest keep entries.
func (j *Journal) trim(sessionID, route string) error {
	var cutoff []uint
	err := j.db.Model(&models.ConsoleEntry{}).
		Where("session_id = ? AND route = ?", sessionID, route).
		Order("id desc").
		Offset(j.keep).
		Limit(1).
		Pluck("id", &cutoff).Error
	if err != nil || len(cutoff) == 0 {
		return err
	}
	return j.db.Where("session_id = ? AND route = ? AND id <= ?", sessionID, route, cutoff[0]).
		Delete(&models.ConsoleEntry{}).Error
}

// Recent returns the newest n entries of a session's route, oldest first.
func (j *Journal) Recent(sessionID, route string, n int) ([]models.ConsoleEntry, error) {
	var entries []models.ConsoleEntry
	err := j.db.Where("session_id = ? AND route = ?", sessionID, route).
		Order("id desc").
		Limit(n).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	for l, r := 0, len(entries)-1; l < r; l, r = l+1, r-1 {
		entries[l], entries[r] = entries[r], entries[l]
	}
	return entries, nil
}

// Count returns how many entries a session's route holds.
func (j *Journal) Count(sessionID, route string) (int64, error) {
	var n int64
	err := j.db.Model(&models.ConsoleEntry{}).
		Where("session_id = ? AND route = ?", sessionID, route).
		Count(&n).Error
	return n, err
}

// Purge deletes every entry of a session.
func (j *Journal) Purge(sessionID string) (int64, error) {
	res := j.db.Where("session_id = ?", sessionID).Delete(&models.ConsoleEntry{})
	return res.RowsAffected, res.Error
}

// Console returns a hooks.Console writing to this journal.
func (j *Journal) Console(sessionID, route, variant string) hooks.Console {
	return &console{j: j, session: sessionID, route: route, variant: variant}
}

type console struct {
	j       *Journal
	session string
	route   string
	variant string
}

func (c *console) Log(args ...any)   { c.write(hooks.LevelLog, args) }
func (c *console) Warn(args ...any)  { c.write(hooks.LevelWarn, args) }
func (c *console) Error(args ...any) { c.write(hooks.LevelError, args) }

func (c *console) write(level hooks.Level, args []any) {
	msg := hooks.Format(args...)
	c.j.log.Debug("console",
		zap.String("session", c.session),
		zap.String("route", c.route),
		zap.String("variant", c.variant),
		zap.String("level", string(level)),
		zap.String("message", msg))

	err := c.j.Append(&models.ConsoleEntry{
		SessionID: c.session,
		Route:     c.route,
		Variant:   c.variant,
		Level:     string(level),
		Message:   msg,
	})
	if err != nil {
		c.j.log.Warn("console write failed", zap.String("session", c.session), zap.Error(err))
	}
}
