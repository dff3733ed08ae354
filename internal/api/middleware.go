package api

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"modguard/internal/common"
)

type contextKey string

const claimsKey contextKey = "reviewer_claims"

// RequireReviewer guards an endpoint with a Bearer reviewer token and
// stashes the verified claims in the request context.
func RequireReviewer(log *zap.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing reviewer token")
			return
		}

		claims, err := common.ValidToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			log.Warn("rejected reviewer token", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid reviewer token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin additionally checks the admin bit on the token.
func RequireAdmin(log *zap.Logger, next http.HandlerFunc) http.HandlerFunc {
	return RequireReviewer(log, func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims == nil || !claims.IsAdmin {
			writeError(w, http.StatusForbidden, "admin privileges required")
			return
		}
		next(w, r)
	})
}

func claimsFrom(ctx context.Context) *common.Claims {
	claims, _ := ctx.Value(claimsKey).(*common.Claims)
	return claims
}

// reviewerID extracts the acting reviewer's user ID, nil when the
// endpoint was reached without a token.
func reviewerID(ctx context.Context) *uint64 {
	claims := claimsFrom(ctx)
	if claims == nil {
		return nil
	}
	id := claims.UserID
	return &id
}
