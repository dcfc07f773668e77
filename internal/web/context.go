package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/sheetforms/internal/core"
)

// withClient attaches the caller's IP and User-Agent to the request context
// so the service can tag its change log.
func withClient(r *http.Request) context.Context {
	return core.ContextWithClient(r.Context(), core.Client{
		IP:        clientIP(r), // already resolved by TrustedRealIP
		UserAgent: r.Header.Get("User-Agent"),
	})
}
