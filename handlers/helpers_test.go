// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/scrutin/assets"
	"github.com/danielhkuo/scrutin/cliparse"
	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/engine"
	"github.com/danielhkuo/scrutin/middleware"
	"github.com/danielhkuo/scrutin/store"
	"github.com/danielhkuo/scrutin/testutil"
)

type testEnv struct {
	db    *sql.DB
	cfg   cliparse.Config
	clock *election.FixedClock
	eng   *engine.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig(t)
	as, err := assets.Open(cfg.AssetDir)
	if err != nil {
		t.Fatalf("Failed to open asset store: %v", err)
	}
	t.Cleanup(func() { as.Close() })

	clock := &election.FixedClock{T: time.Now().UTC()}
	return &testEnv{
		db:    db,
		cfg:   cfg,
		clock: clock,
		eng:   engine.New(store.New(db), as, clock, nil),
	}
}

// authed wraps h the way the router wraps institution routes
func (e *testEnv) authed(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RequireInstitution(e.cfg.JWTSecret, h)
}

// serve runs h on a JSON request. pathValues are name/value pairs.
func serve(h http.HandlerFunc, method, path string, body any, token string, pathValues ...string) *httptest.ResponseRecorder {
	var headers map[string]string
	if token != "" {
		headers = testutil.Bearer(token)
	}
	req := testutil.MakeRequest(method, path, body, headers)
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

// multipartRequest builds a form with fields and an optional file
func multipartRequest(t *testing.T, path, token string, fields map[string]string, fileField, filename string, file []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		fw.Write(file)
	}
	mw.Close()

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
