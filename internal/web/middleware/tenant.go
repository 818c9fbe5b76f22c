package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	tenantIDKey contextKey = "tenant_id"
	userIDKey   contextKey = "user_id"
)

// RequireTenant validates the X-Tenant-ID header and stores it in the
// request context. Every import operation is tenant-scoped, so a request
// without a tenant has nowhere to go; it is rejected before any handler
// runs. The optional X-User-ID header rides along for job attribution.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := strings.TrimSpace(r.Header.Get("X-Tenant-ID"))
		if tenantID == "" {
			slog.Warn("tenant: missing X-Tenant-ID header",
				"path", r.URL.Path,
				"method", r.Method,
				"remote_addr", r.RemoteAddr,
			)
			rejectTenant(w, "missing X-Tenant-ID header", "tenant_required")
			return
		}
		if _, err := uuid.Parse(tenantID); err != nil {
			slog.Warn("tenant: malformed tenant id",
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			rejectTenant(w, "X-Tenant-ID must be a UUID", "tenant_invalid")
			return
		}

		ctx := context.WithValue(r.Context(), tenantIDKey, tenantID)
		if userID := strings.TrimSpace(r.Header.Get("X-User-ID")); userID != "" {
			ctx = context.WithValue(ctx, userIDKey, userID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rejectTenant writes a 400 in the web layer's error envelope shape.
func rejectTenant(w http.ResponseWriter, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"message": message, "code": code},
	})
}

// TenantID returns the tenant id stored by RequireTenant, or "" when the
// middleware did not run.
func TenantID(ctx context.Context) string {
	id, _ := ctx.Value(tenantIDKey).(string)
	return id
}

// UserID returns the acting user id, or "" when the header was absent.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
