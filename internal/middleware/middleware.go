package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	handlers "marketplace/internal/handler"
	"marketplace/internal/apperr"
	"marketplace/internal/logging"
	"marketplace/internal/models"
	"marketplace/internal/ratelimit"
)

type Middleware func(http.Handler) http.Handler

// Authenticator verifies bearer tokens.
type Authenticator interface {
	Authenticate(tokenString string) (models.Identity, error)
}

// AuthMiddleware verifies the bearer token and puts the caller's identity in the context.
func AuthMiddleware(auth Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				handlers.WriteError(w, "authentication required", http.StatusUnauthorized)
				return
			}

			// "Bearer <token>"
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				handlers.WriteError(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			identity, err := auth.Authenticate(parts[1])
			if err != nil {
				handlers.WriteError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(handlers.WithIdentity(r.Context(), identity)))
		})
	}
}

// RoleMiddleware lets through only identities holding one of allowedRoles.
// It must run after AuthMiddleware.
func RoleMiddleware(allowedRoles ...models.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := handlers.IdentityFromContext(r.Context())
			if !ok {
				handlers.WriteError(w, "authentication required", http.StatusUnauthorized)
				return
			}

			for _, role := range allowedRoles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			handlers.WriteError(w, "access denied", http.StatusForbidden)
		})
	}
}

// RateLimit throttles requests per client address under scope. When the
// limiter's store is unreachable the request is let through.
func RateLimit(limiter ratelimit.Limiter, scope string, interval time.Duration, log logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + ClientIP(r)

			err := limiter.Attempt(r.Context(), key, interval)
			switch {
			case err == nil:
			case errors.Is(err, apperr.ErrTooManyAttempts):
				handlers.WriteError(w, err.Error(), http.StatusTooManyRequests)
				return
			default:
				log.Warn(r.Context(), "rate limiter unavailable", "key", key, "error", err)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP is the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func CORSMiddleware(origin string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func LoggingMiddleware(log logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			log.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"duration", time.Since(start),
			)
		})
	}
}

// RecoverMiddleware turns a panicking handler into a 500.
func RecoverMiddleware(log logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					log.Error(r.Context(), "panic in handler", "panic", p, "path", r.URL.Path)
					handlers.WriteError(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Chain wraps h so that the first middleware listed runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
