// Package tenant maps an inbound request to an isolated storage namespace.
package tenant

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// DefaultNamespace is used when a request names no tenant
const DefaultNamespace = "default"

// Request headers consulted, in order, before the host and query string
const (
	HeaderTenantID      = "X-Tenant-ID"
	HeaderCourtDistrict = "X-Court-District"
)

const maxLength = 50

type contextKey struct{}

// Resolver derives namespaces from requests
type Resolver struct {
	fallback string
}

// NewResolver returns a Resolver that falls back to the given namespace,
// or DefaultNamespace when it is empty
func NewResolver(fallback string) *Resolver {
	fallback = Sanitize(fallback)
	if fallback == "" {
		fallback = DefaultNamespace
	}
	return &Resolver{fallback: fallback}
}

// Resolve returns the namespace for r. Sources are tried in order: the
// X-Tenant-ID header, the X-Court-District header, the host's subdomain,
// the tenant query parameter, then the fallback. A source whose value
// sanitizes to nothing is skipped.
func (res *Resolver) Resolve(r *http.Request) string {
	candidates := []string{
		r.Header.Get(HeaderTenantID),
		r.Header.Get(HeaderCourtDistrict),
		subdomain(r.Host),
		r.URL.Query().Get("tenant"),
	}
	for _, c := range candidates {
		if ns := Sanitize(c); ns != "" {
			return ns
		}
	}
	return res.fallback
}

// subdomain returns the first label of a host with at least three labels
func subdomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if net.ParseIP(host) != nil {
		return ""
	}
	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}
	return parts[0]
}

// Sanitize lowercases id and keeps only ASCII letters, digits, dashes and
// underscores, up to fifty characters
func Sanitize(id string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(id) {
		if b.Len() == maxLength {
			break
		}
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Middleware resolves the namespace once per request and stores it on the
// request context
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ns := res.Resolve(r)
		w.Header().Set(HeaderTenantID, ns)
		next.ServeHTTP(w, r.WithContext(WithNamespace(r.Context(), ns)))
	})
}

// WithNamespace returns a copy of ctx carrying namespace
func WithNamespace(ctx context.Context, namespace string) context.Context {
	return context.WithValue(ctx, contextKey{}, namespace)
}

// FromContext returns the namespace stored by Middleware, or
// DefaultNamespace when there is none
func FromContext(ctx context.Context) string {
	if ns, ok := ctx.Value(contextKey{}).(string); ok && ns != "" {
		return ns
	}
	return DefaultNamespace
}
