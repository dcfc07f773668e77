package core

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/sheetforms/internal/logging"
)

type contextKey string

const ctxKeyClient contextKey = "client"

// Client identifies who issued a change, for the change log.
type Client struct {
	IP        string
	UserAgent string
}

// ContextWithClient attaches the calling client to ctx.
func ContextWithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, ctxKeyClient, c)
}

// ClientFromContext returns the client attached to ctx, if any.
func ClientFromContext(ctx context.Context) (Client, bool) {
	c, ok := ctx.Value(ctxKeyClient).(Client)
	return c, ok
}

// changeLogger returns the request logger for a sheet, tagged with the
// client when one is known.
func changeLogger(ctx context.Context, sheet string) *slog.Logger {
	log := logging.WithFields(ctx, "sheet", sheet)
	if c, ok := ClientFromContext(ctx); ok {
		log = log.With("client_ip", c.IP, "user_agent", c.UserAgent)
	}
	return log
}
