package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// IDs correlates log lines of one request. The trace id is kept when a
// caller propagates it across services; the request id is per hop.
type IDs struct {
	Request string
	Trace   string
}

type idsKey struct{}

// WithRequestAndTrace assigns IDs from the incoming headers, minting any
// that are missing, and echoes them on the response.
func WithRequestAndTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := IDs{
			Request: headerOrNew(r, HeaderRequestID),
			Trace:   headerOrNew(r, HeaderTraceID),
		}
		w.Header().Set(HeaderRequestID, ids.Request)
		w.Header().Set(HeaderTraceID, ids.Trace)
		next.ServeHTTP(w, r.WithContext(ContextWithIDs(r.Context(), ids)))
	})
}

func headerOrNew(r *http.Request, name string) string {
	if v := r.Header.Get(name); v != "" && len(v) <= 128 {
		return v
	}
	return uuid.NewString()
}

func ContextWithIDs(ctx context.Context, ids IDs) context.Context {
	return context.WithValue(ctx, idsKey{}, ids)
}

func IDsFromContext(ctx context.Context) IDs {
	ids, _ := ctx.Value(idsKey{}).(IDs)
	return ids
}

func RequestIDFromContext(ctx context.Context) string { return IDsFromContext(ctx).Request }

func TraceIDFromContext(ctx context.Context) string { return IDsFromContext(ctx).Trace }
