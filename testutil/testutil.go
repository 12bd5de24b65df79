// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/scrutin/auth"
	"github.com/danielhkuo/scrutin/cliparse"
	"github.com/danielhkuo/scrutin/db"
)

// TestJWTSecret signs tokens in tests.
const TestJWTSecret = "test-jwt-secret"

// SetupTestDB creates a fresh sqlite database with the full schema in a
// per-test temporary directory.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scrutin.db")
	conn, err := db.Open(db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: db.TypeSQLite,
		JWTSecret:    TestJWTSecret,
		TokenTTL:     time.Hour,
		TimeZone:     "UTC",
		AssetDir:     filepath.Join(t.TempDir(), "media"),
		CORSOrigins:  []string{"*"},
	}
}

// CreateTestInstitution inserts an institution and returns its ID and a
// bearer token for it. The password is "password123".
func CreateTestInstitution(t *testing.T, conn *sql.DB, name string) (institutionID, token string) {
	t.Helper()

	institutionID = auth.NewID()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	_, err = conn.Exec(`
		INSERT INTO institution (id, username, email, name, description, password_hash, created_at)
		VALUES ($1, $2, $3, $4, '', $5, $6)
	`, institutionID, name+"-admin", name+"@example.org", name, hash, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test institution: %v", err)
	}

	token, err = auth.IssueToken(institutionID, name+"-admin", TestJWTSecret, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return institutionID, token
}

// ElectionOpts configures CreateTestElection. Zero values give a closed
// single-round election.
type ElectionOpts struct {
	Scrutin  string
	Majority float64
	Advance  float64
	Start    *time.Time
	End      *time.Time
	Round    int
}

// CreateTestElection inserts an election and returns its ID
func CreateTestElection(t *testing.T, conn *sql.DB, institutionID string, opts ElectionOpts) string {
	t.Helper()

	if opts.Scrutin == "" {
		opts.Scrutin = "single_round"
	}
	if opts.Majority == 0 {
		opts.Majority = 50
	}
	if opts.Round == 0 {
		opts.Round = 1
	}
	var start, end sql.NullTime
	if opts.Start != nil {
		start = sql.NullTime{Time: opts.Start.UTC(), Valid: true}
	}
	if opts.End != nil {
		end = sql.NullTime{Time: opts.End.UTC(), Valid: true}
	}

	electionID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO election (id, institution_id, title, description, scrutin_type, majority_threshold,
			advance_threshold, current_round, starts_at, ends_at, closed, created_at)
		VALUES ($1, $2, 'Test Election', 'A test election', $3, $4, $5, $6, $7, $8, FALSE, $9)
	`, electionID, institutionID, opts.Scrutin, opts.Majority, opts.Advance, opts.Round, start, end, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return electionID
}

// CreateOpenElection inserts an election that opened an hour ago and has no end.
func CreateOpenElection(t *testing.T, conn *sql.DB, institutionID string) string {
	t.Helper()
	start := time.Now().Add(-time.Hour)
	return CreateTestElection(t, conn, institutionID, ElectionOpts{Start: &start})
}

// AddTestCandidate adds a candidate to an election and returns its ID
func AddTestCandidate(t *testing.T, conn *sql.DB, electionID, name string) string {
	t.Helper()

	candidateID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO candidate (id, election_id, name, bio, position, photo_key, created_at)
		VALUES ($1, $2, $3, '', '', '', $4)
	`, candidateID, electionID, name, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	// keep creation order distinguishable
	time.Sleep(time.Millisecond)
	return candidateID
}

// CreateTestVoter inserts a voter and returns its ID
func CreateTestVoter(t *testing.T, conn *sql.DB, institutionID, identifier string, eligible bool) string {
	t.Helper()

	voterID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO voter (id, institution_id, identifier, name, eligible, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voterID, institutionID, identifier, "Voter "+identifier, eligible, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}
	return voterID
}

// CastTestVote records a vote directly, bypassing the gate. An empty
// candidateID records a blank vote.
func CastTestVote(t *testing.T, conn *sql.DB, electionID, voterID, candidateID string, at time.Time) string {
	t.Helper()

	var candidate sql.NullString
	if candidateID != "" {
		candidate = sql.NullString{String: candidateID, Valid: true}
	}
	voteID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO vote (id, election_id, voter_id, candidate_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, electionID, voterID, candidate, at.UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
	return voteID
}

// CountRows runs a COUNT(*) query
func CountRows(t *testing.T, conn *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// Bearer returns an Authorization header map for token
func Bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
