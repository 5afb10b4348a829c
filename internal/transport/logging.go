package transport

import (
	"context"

	"go.uber.org/zap"
)

// loggingTransport records outbound traffic instead of delivering it. Used
// when no chat backend is configured, so the rest of the system behaves
// normally in development.
type loggingTransport struct {
	logger *zap.Logger
}

// NewLoggingTransport returns a transport that only logs.
func NewLoggingTransport(logger *zap.Logger) Transport {
	return &loggingTransport{logger: logger}
}

func (t *loggingTransport) SendMessage(_ context.Context, actorID int64, text string) error {
	t.logger.Info("outbound message", zap.Int64("actor_id", actorID), zap.String("text", text))
	return nil
}

func (t *loggingTransport) SendPhoto(_ context.Context, actorID int64, fileRef, caption string) error {
	t.logger.Info("outbound photo",
		zap.Int64("actor_id", actorID),
		zap.String("file_ref", fileRef),
		zap.String("caption", caption))
	return nil
}

func (t *loggingTransport) SendDocument(_ context.Context, actorID int64, fileRef, caption string) error {
	t.logger.Info("outbound document",
		zap.Int64("actor_id", actorID),
		zap.String("file_ref", fileRef),
		zap.String("caption", caption))
	return nil
}
