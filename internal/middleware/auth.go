package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/observability"
)

// MerchantAuth requires "Authorization: Bearer <token>". An empty configured
// token rejects every request.
func MerchantAuth(token string) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, "missing authorization header")
				return
			}

			scheme, credentials, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				writeAuthError(w, "invalid authorization scheme")
				return
			}

			given := []byte(strings.TrimSpace(credentials))
			if len(expected) == 0 || subtle.ConstantTimeCompare(given, expected) != 1 {
				log.Warn().
					Str("authorization", observability.MaskAuthorization(authHeader)).
					Str("remote_addr", r.RemoteAddr).
					Msg("merchant token rejected")
				writeAuthError(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    "unauthorized",
		"message": msg,
	})
}
