package status

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
)

// Ensure ZapSink implements the interface.
var _ driven.StatusSink = (*ZapSink)(nil)

// ZapSink writes one structured log entry per run event.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink creates a log sink. A nil logger uses zap.NewNop.
func NewZapSink(log *zap.Logger) *ZapSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapSink{log: log.Named("sync")}
}

// Publish logs the event. Failures are logged at warn level.
func (s *ZapSink) Publish(event domain.Event) {
	fields := []zap.Field{
		zap.String("handle", event.Handle.String()),
		zap.String("kind", string(event.Kind)),
	}
	if event.Kind.IsTerminal() {
		fields = append(fields,
			zap.Int("items", event.Items),
			zap.Duration("duration", event.At.Sub(event.StartedAt)),
		)
	}
	level := zapcore.InfoLevel
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}
	if event.Kind == domain.EventFailed {
		level = zapcore.WarnLevel
	}
	s.log.Log(level, "sync "+string(event.Kind), fields...)
}
