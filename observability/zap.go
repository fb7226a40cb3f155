package observability

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapObserver emits events to a zap.Logger. The event type becomes the log
// message and Data keys become structured fields.
type ZapObserver struct {
	logger *zap.Logger
}

// NewZapObserver creates a ZapObserver that emits to the given logger.
func NewZapObserver(logger *zap.Logger) *ZapObserver {
	return &ZapObserver{logger: logger}
}

// ZapLevel maps l onto zap, folding trace into debug and fatal into error.
func (l Level) ZapLevel() zapcore.Level {
	switch l.severity() {
	case sevTrace, sevDebug:
		return zapcore.DebugLevel
	case sevInfo:
		return zapcore.InfoLevel
	case sevWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func (o *ZapObserver) OnEvent(_ context.Context, event Event) {
	ce := o.logger.Check(event.Level.ZapLevel(), string(event.Type))
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, len(event.Data)+1)
	fields = append(fields, zap.String("source", event.Source))
	for _, k := range sortedKeys(event.Data) {
		fields = append(fields, zap.Any(k, event.Data[k]))
	}
	if !event.Timestamp.IsZero() {
		ce.Time = event.Timestamp
	}
	ce.Write(fields...)
}
