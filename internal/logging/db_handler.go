package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/larenzzx/aetas-cert-tracker/internal/models"
)

// EventKey marks a log record as an audit event. Records carrying this
// attribute are persisted to audit_logs regardless of level; everything at
// ERROR and above is persisted too.
const EventKey = "event"

// DBHandler is an slog.Handler that batches audit events and errors to the
// audit_logs table.
type DBHandler struct {
	db       *gorm.DB
	mu       sync.Mutex
	buffer   []models.AuditLog
	ticker   *time.Ticker
	done     chan struct{}
	fallback *slog.Logger
}

func NewDBHandler(db *gorm.DB) *DBHandler {
	h := &DBHandler{
		db:     db,
		buffer: make([]models.AuditLog, 0, 50),
		ticker: time.NewTicker(5 * time.Second),
		done:   make(chan struct{}),
		// Flush failures must not loop back through this handler.
		fallback: slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
	go h.flushLoop()
	return h
}

func (h *DBHandler) flushLoop() {
	for {
		select {
		case <-h.ticker.C:
			h.flush()
		case <-h.done:
			h.flush()
			return
		}
	}
}

func (h *DBHandler) flush() {
	h.mu.Lock()
	if len(h.buffer) == 0 {
		h.mu.Unlock()
		return
	}
	batch := h.buffer
	h.buffer = make([]models.AuditLog, 0, 50)
	h.mu.Unlock()

	if err := h.db.CreateInBatches(batch, 50).Error; err != nil {
		h.fallback.Error("failed to flush audit logs to DB", "error", err, "count", len(batch))
	}
}

func (h *DBHandler) Stop() {
	h.ticker.Stop()
	close(h.done)
}

// Enabled accepts every level; Handle filters out non-audit records below
// ERROR.
func (h *DBHandler) Enabled(_ context.Context, level slog.Level) bool {
	return true
}

func (h *DBHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.AuditLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case EventKey:
			entry.Event = a.Value.String()
		case "actor_id":
			s := a.Value.String()
			entry.ActorID = &s
		case "actor_email":
			entry.ActorEmail = a.Value.String()
		case "target_id":
			s := a.Value.String()
			entry.TargetID = &s
		case "ip":
			entry.IP = a.Value.String()
		case "user_agent":
			entry.UserAgent = a.Value.String()
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	})

	if entry.Event == "" && record.Level < slog.LevelError {
		return nil
	}

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	h.mu.Lock()
	h.buffer = append(h.buffer, entry)
	needFlush := len(h.buffer) >= 50
	h.mu.Unlock()

	if needFlush {
		go h.flush()
	}
	return nil
}

func (h *DBHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *DBHandler) WithGroup(name string) slog.Handler {
	return h
}
