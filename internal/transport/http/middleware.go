package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"registrar/pkg/derrors"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/httputil"
	"registrar/pkg/requestcontext"
)

// RequestID assigns each request a correlation id, carried in the context
// and echoed in the response for log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), reqID)))
	})
}

// Authenticate validates the bearer token and stores the authenticated user
// in the context. Requests without a token pass through unauthenticated;
// handlers that need an identity enforce it themselves.
func Authenticate(signingKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				httputil.WriteError(w, derrors.New(derrors.CodeUnauthorized, "malformed authorization header"))
				return
			}

			claims := jwt.RegisteredClaims{}
			_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(signingKey), nil
			})
			if err != nil {
				httputil.WriteError(w, derrors.Wrap(err, derrors.CodeUnauthorized, "invalid token"))
				return
			}

			userID, err := id.ParseUserID(claims.Subject)
			if err != nil {
				httputil.WriteError(w, derrors.New(derrors.CodeUnauthorized, "invalid token subject"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithUserID(r.Context(), userID)))
		})
	}
}

// RequireAdmin gates staff endpoints behind the shared admin token.
func RequireAdmin(adminToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminToken == "" {
				httputil.WriteError(w, derrors.New(derrors.CodeForbidden, "admin endpoints are disabled"))
				return
			}
			got := r.Header.Get("X-Admin-Token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(adminToken)) != 1 {
				httputil.WriteError(w, derrors.New(derrors.CodeForbidden, "admin token required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
