package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/stockroomhq/warehouse-backend/pkg/logger"
)

const actorHeader = "X-Actor"

type actorCtxKey struct{}

// Actor lifts the acting user from the X-Actor header into the request
// context. There is no authentication layer in front of this service; the
// header is trusted as-is.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := strings.TrimSpace(r.Header.Get(actorHeader))
			if actor == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), actorCtxKey{}, actor)
			if logg != nil {
				ctx = logg.WithActor(ctx, actor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom returns the acting user, defaulting to "system".
func ActorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorCtxKey{}).(string); ok && actor != "" {
		return actor
	}
	return "system"
}
