package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleOrganizer grants access to event creation and reports.
const RoleOrganizer = "organizer"

const (
	codeUnauthorized = "UNAUTHORIZED"
	tokenIssuer      = "event-registration"
)

// AdminClaims is the JWT payload accepted on organizer routes.
type AdminClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// IssueAdminToken signs an HS256 organizer token for subject.
func IssueAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("admin secret is empty")
	}
	now := time.Now()
	claims := &AdminClaims{
		Roles: []string{RoleOrganizer},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RequireAdmin rejects requests without a valid organizer bearer token. With
// an empty secret the organizer routes are open.
func RequireAdmin(secret string, log *slog.Logger) func(http.Handler) http.Handler {
	if secret == "" {
		return func(next http.Handler) http.Handler { return next }
	}

	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) { return key, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody("missing bearer token"))
				return
			}

			var claims AdminClaims
			if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
				log.WarnContext(r.Context(), "rejected organizer token",
					slog.String("path", r.URL.Path),
					slog.Any("error", err),
				)
				writeJSON(w, http.StatusUnauthorized, errorBody("invalid token"))
				return
			}
			if !slices.Contains(claims.Roles, RoleOrganizer) {
				writeJSON(w, http.StatusForbidden, errorBody("organizer role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg, "code": codeUnauthorized}
}
