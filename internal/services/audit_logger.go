package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/xbpneus/authgate/domain"
)

// LogAuditLogger implements domain.AuditLogger by writing one JSON line per
// event through a standard logger
type LogAuditLogger struct {
	logger *log.Logger
}

// NewLogAuditLogger creates an audit logger. A nil logger uses log.Default().
func NewLogAuditLogger(logger *log.Logger) *LogAuditLogger {
	if logger == nil {
		logger = log.Default()
	}
	return &LogAuditLogger{logger: logger}
}

// LogEvent implements domain.AuditLogger
func (l *LogAuditLogger) LogEvent(_ context.Context, event *domain.AuditEvent) error {
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}
	l.logger.Printf("AUDIT: %s", b)
	return nil
}

var _ domain.AuditLogger = (*LogAuditLogger)(nil)
