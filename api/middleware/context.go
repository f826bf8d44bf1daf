package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sokochain/sokochain-backend/pkg/logger"
)

type contextKey string

const ctxCallerAddress contextKey = "caller_address"

const callerAddressHeader = "X-Caller-Address"

// CallerAddressFromContext returns the account address the request was made
// as, or empty when the caller did not identify itself.
func CallerAddressFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCallerAddress).(string); ok {
		return v
	}
	return ""
}

// WithCallerAddress injects the caller address into the context.
func WithCallerAddress(ctx context.Context, address string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCallerAddress, address)
}

// CallerAddress lifts the caller's account address from the request header
// into the context and the request log fields. The ledger has no sessions;
// callers are identified by the address they sign requests as.
func CallerAddress(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			address := strings.TrimSpace(r.Header.Get(callerAddressHeader))
			if address == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithCallerAddress(r.Context(), address)
			if logg != nil {
				ctx = logg.WithCallerAddress(ctx, address)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
