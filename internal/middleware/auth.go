package middleware

import (
	"crypto/subtle"
	"net/http"
	"sync"

	"github.com/2beens/fitlog/internal/telemetry/tracing"
	"github.com/2beens/fitlog/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const SecretHeader = "X-Fitlog-Secret"

// AuthMiddlewareHandler guards mutating requests with a shared secret,
// checked against a bcrypt hash. Reads stay open.
type AuthMiddlewareHandler struct {
	secretHash   string
	allowedPaths map[string]bool

	mu sync.Mutex
	// last secret that matched the hash, bcrypt is slow
	verified string
}

func NewAuthMiddlewareHandler(secretHash string) *AuthMiddlewareHandler {
	if secretHash == "" {
		log.Warnln("api secret hash not set, all requests are allowed")
	}
	return &AuthMiddlewareHandler{
		secretHash: secretHash,
		allowedPaths: map[string]bool{
			"/":        true,
			"/health":  true,
			"/version": true,
		},
	}
}

func (h *AuthMiddlewareHandler) secretValid(secret string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.verified != "" && subtle.ConstantTimeCompare([]byte(h.verified), []byte(secret)) == 1 {
		return true
	}
	if !pkg.CheckPasswordHash(secret, h.secretHash) {
		return false
	}
	h.verified = secret
	return true
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.secretHash == "" || r.Method == http.MethodGet || h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			secret := r.Header.Get(SecretHeader)
			if secret == "" {
				log.Tracef("[missing secret] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-secret")
				return
			}
			if !h.secretValid(secret) {
				reqIP, _ := pkg.ReadUserIP(r)
				log.Warnf("[invalid secret] [auth middleware] unauthorized => %s from %s", r.URL.Path, reqIP)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-secret")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
