package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/portfolio/internal/core"
	"github.com/JonMunkholm/portfolio/internal/web/middleware"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for job history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, middleware.ClientIP(r), r.UserAgent())
}
