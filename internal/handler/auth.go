package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/unimart/storefront/internal/domain/auth"
)

// APIKeyHeader carries the caller's API key.
const APIKeyHeader = "api_key"

// requireScope authenticates the api_key header and rejects principals
// lacking scope. The principal is stored in the request context.
func (h *Handler) requireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p, err := h.Auth.Authenticate(ctx, r.Header.Get(APIKeyHeader))
			if err != nil {
				writeError(w, r, err)
				return
			}
			if !p.Has(scope) {
				writeError(w, r, auth.ErrForbidden)
				return
			}

			trace.SpanFromContext(ctx).SetAttributes(attribute.String("enduser.id", p.ID))
			ctx = zctx.With(ctx, zap.String("principal", p.ID))
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(ctx, p)))
		})
	}
}

// principal returns the caller set by requireScope.
func principal(r *http.Request) *auth.Principal {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		// Routes using principal are always behind requireScope.
		panic("handler: no principal in request context")
	}
	return p
}
