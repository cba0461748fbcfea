package mail

import (
	"context"

	"github.com/dmitrijs2005/gophersocial/internal/logging"
)

// LogNotifier writes messages to the log instead of sending them. The body
// may contain secrets, so it is logged at debug level only.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logging.ForModule(logger, "mail")}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	n.logger.Info(ctx, "mail not delivered: no outbox configured", "to", msg.To, "subject", msg.Subject)
	n.logger.Debug(ctx, "mail body", "to", msg.To, "body", msg.Body)
	return nil
}
