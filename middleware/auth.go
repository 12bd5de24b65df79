// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielhkuo/scrutin/auth"
	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/engine"
)

type ctxKey int

const claimsKey ctxKey = iota

// RequireInstitution rejects requests without a valid institution bearer
// token and stores the token claims in the request context.
func RequireInstitution(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			WriteError(w, election.Unauthorized("missing bearer token"))
			return
		}
		claims, err := auth.ParseToken(token, secret)
		if err != nil {
			WriteError(w, election.Unauthorized("invalid or expired token"))
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

// OptionalInstitution attaches claims when a valid token is present and
// otherwise passes the request through unchanged.
func OptionalInstitution(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if claims, err := auth.ParseToken(token, secret); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
			}
		}
		next(w, r)
	}
}

// InstitutionFrom returns the authenticated institution as an actor
func InstitutionFrom(ctx context.Context) (engine.Actor, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	if !ok || claims == nil {
		return engine.Actor{}, false
	}
	return engine.Actor{InstitutionID: claims.Subject, Username: claims.Username}, true
}

// WithClaims attaches claims to ctx the way RequireInstitution does
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
