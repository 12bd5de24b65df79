// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/danielhkuo/scrutin/auth"
	"github.com/danielhkuo/scrutin/models"
	"github.com/danielhkuo/scrutin/testutil"
)

func TestRegisterInstitution(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.eng, env.cfg)

	valid := models.RegisterRequest{
		Username:    "unikin-admin",
		Email:       "admin@unikin.ac.cd",
		Password:    "correct-horse",
		Name:        "Université de Kinshasa",
		Description: "Public university",
	}

	w := serve(h.Register, "POST", "/auth/institution/register", valid, "")
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.AuthResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Institution.Name != valid.Name || resp.Institution.Username != valid.Username {
		t.Errorf("Unexpected institution: %+v", resp.Institution)
	}
	claims, err := auth.ParseToken(resp.Token, env.cfg.JWTSecret)
	if err != nil {
		t.Fatalf("Expected a valid token, got: %v", err)
	}
	if claims.Subject != resp.Institution.ID {
		t.Errorf("Expected token subject %s, got %s", resp.Institution.ID, claims.Subject)
	}
	if n := testutil.CountRows(t, env.db, `SELECT COUNT(*) FROM audit_log WHERE action = 'institution_registered'`); n != 1 {
		t.Errorf("Expected 1 registration audit entry, got %d", n)
	}

	testCases := []struct {
		name           string
		mutate         func(r *models.RegisterRequest)
		expectedStatus int
	}{
		{"duplicate username", func(r *models.RegisterRequest) { r.Email = "other@unikin.ac.cd"; r.Name = "Other" }, http.StatusBadRequest},
		{"short password", func(r *models.RegisterRequest) { r.Username = "x"; r.Password = "short" }, http.StatusBadRequest},
		{"bad email", func(r *models.RegisterRequest) { r.Username = "y"; r.Email = "not-an-email" }, http.StatusBadRequest},
		{"missing name", func(r *models.RegisterRequest) { r.Username = "z"; r.Name = "" }, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			w := serve(h.Register, "POST", "/auth/institution/register", req, "")
			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}
}

func TestLoginInstitution(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.eng, env.cfg)

	instID, _ := testutil.CreateTestInstitution(t, env.db, "UPC")

	testCases := []struct {
		name           string
		username       string
		password       string
		expectedStatus int
	}{
		{"by username", "UPC-admin", "password123", http.StatusOK},
		{"by institution name", "upc", "password123", http.StatusOK},
		{"wrong password", "UPC-admin", "password124", http.StatusUnauthorized},
		{"unknown account", "nobody", "password123", http.StatusUnauthorized},
		{"missing password", "UPC-admin", "", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(h.Login, "POST", "/auth/institution/login", models.LoginRequest{
				Username: tc.username,
				Password: tc.password,
			}, "")
			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedStatus != http.StatusOK {
				return
			}
			var resp models.AuthResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Institution.ID != instID || resp.Token == "" {
				t.Errorf("Unexpected login response: %+v", resp)
			}
		})
	}
}

func TestVoterLogin(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.eng, env.cfg)

	instID, _ := testutil.CreateTestInstitution(t, env.db, "ISP")
	eligibleID := testutil.CreateTestVoter(t, env.db, instID, "S001", true)
	testutil.CreateTestVoter(t, env.db, instID, "S002", false)

	testCases := []struct {
		name           string
		institutionID  string
		identifier     string
		expectedStatus int
	}{
		{"eligible", instID, "S001", http.StatusOK},
		{"not eligible", instID, "S002", http.StatusForbidden},
		{"unknown identifier", instID, "S999", http.StatusNotFound},
		{"missing institution", "", "S001", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(h.VoterLogin, "POST", "/auth/voter/login", models.VoterLoginRequest{
				InstitutionID: tc.institutionID,
				Identifier:    tc.identifier,
			}, "")
			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedStatus != http.StatusOK {
				return
			}
			var resp models.VoterLoginResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.VoterID != eligibleID || resp.Name != "Voter S001" {
				t.Errorf("Unexpected voter login response: %+v", resp)
			}
		})
	}
}

func TestInstitutionProfile(t *testing.T) {
	env := newTestEnv(t)
	h := NewInstitutionHandler(env.eng)

	instID, token := testutil.CreateTestInstitution(t, env.db, "UNILU")

	w := serve(env.authed(h.Me), "GET", "/institutions/me", nil, token)
	testutil.AssertStatus(t, w, http.StatusOK)
	var me models.InstitutionResponse
	testutil.AssertJSON(t, w, &me)
	if me.ID != instID || me.Name != "UNILU" {
		t.Errorf("Unexpected profile: %+v", me)
	}

	desc := "Université de Lubumbashi"
	w = serve(env.authed(h.UpdateMe), "PATCH", "/institutions/me", models.UpdateInstitutionRequest{Description: &desc}, token)
	testutil.AssertStatus(t, w, http.StatusOK)
	var updated models.InstitutionResponse
	testutil.AssertJSON(t, w, &updated)
	if updated.Description != desc {
		t.Errorf("Expected description '%s', got '%s'", desc, updated.Description)
	}

	short := "abc"
	w = serve(env.authed(h.UpdateMe), "PATCH", "/institutions/me", models.UpdateInstitutionRequest{Password: &short}, token)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = serve(env.authed(h.Me), "GET", "/institutions/me", nil, "")
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}
