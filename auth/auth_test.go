// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong horse"), ErrInvalidPassword)
	assert.ErrorIs(t, CheckPassword("not-a-hash", "correct horse"), ErrInvalidPassword)
}

func TestTokens(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		issue   func() string
		secret  string
		wantErr bool
	}{
		{
			name: "valid token",
			issue: func() string {
				tok, _ := IssueToken("inst-1", "admin", "secret", time.Hour, now)
				return tok
			},
			secret: "secret",
		},
		{
			name: "wrong secret",
			issue: func() string {
				tok, _ := IssueToken("inst-1", "admin", "secret", time.Hour, now)
				return tok
			},
			secret:  "other",
			wantErr: true,
		},
		{
			name: "expired",
			issue: func() string {
				tok, _ := IssueToken("inst-1", "admin", "secret", time.Minute, now.Add(-time.Hour))
				return tok
			},
			secret:  "secret",
			wantErr: true,
		},
		{
			name:    "garbage",
			issue:   func() string { return "not.a.token" },
			secret:  "secret",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(tt.issue(), tt.secret)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "inst-1", claims.Subject)
			assert.Equal(t, "admin", claims.Username)
		})
	}
}
