// Package journal keeps a sqlite record of every combat tick so allocator
// settings can be retuned offline against real games.
package journal

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const maxBatch = 64

var ErrClosed = errors.New("journal closed")

// TickRecord is one decision tick as the agent saw it.
type TickRecord struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	Session       string `gorm:"index"`
	Tick          int    `gorm:"index"`
	Posture       string
	Engaged       bool
	Friendly      int
	Enemy         int
	Assigned      int
	Skipped       int    // entities with a kind the type table lacks
	Pairs         string // JSON-encoded assignment
	LatencyMicros int64
	Error         string
}

// Journal writes records on a background goroutine. Record never blocks the
// tick; when the buffer is full the record is counted and discarded.
type Journal struct {
	db   *gorm.DB
	ch   chan TickRecord
	done chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// Open creates or opens the sqlite file at path and starts the writer.
func Open(path string, buffer int) (*Journal, error) {
	if buffer <= 0 {
		buffer = 1
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql interface: %w", err)
	}
	// sqlite serialises writers anyway; one connection also keeps :memory: usable.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&TickRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	j := &Journal{
		db:   db,
		ch:   make(chan TickRecord, buffer),
		done: make(chan struct{}),
	}
	go j.run()
	slog.Info("journal opened", "path", path, "buffer", buffer)
	return j, nil
}

// Record queues r for writing. It reports false when r was discarded.
func (j *Journal) Record(r TickRecord) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return false
	}
	select {
	case j.ch <- r:
		return true
	default:
		if n := j.dropped.Add(1); n == 1 || n%100 == 0 {
			slog.Warn("journal buffer full, dropping records", "dropped", n)
		}
		return false
	}
}

// Dropped is the number of records discarded because the buffer was full.
func (j *Journal) Dropped() int64 { return j.dropped.Load() }

func (j *Journal) run() {
	defer close(j.done)
	batch := make([]TickRecord, 0, maxBatch)
	for r := range j.ch {
		batch = append(batch[:0], r)
	drain:
		for len(batch) < maxBatch {
			select {
			case next, ok := <-j.ch:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		if err := j.db.CreateInBatches(batch, maxBatch).Error; err != nil {
			slog.Error("journal write failed", "records", len(batch), "error", err)
		}
	}
}

// Close flushes queued records and closes the database.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return ErrClosed
	}
	j.closed = true
	close(j.ch)
	j.mu.Unlock()

	<-j.done
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Recent returns up to limit records of session, newest tick first.
func (j *Journal) Recent(session string, limit int) ([]TickRecord, error) {
	var out []TickRecord
	err := j.db.Where("session = ?", session).Order("tick desc").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	return out, nil
}
