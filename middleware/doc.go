// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, client_ip) and completion (status,
duration_ms).

# Institution Auth

	mux.HandleFunc("GET /institutions/me",
		middleware.WithLogging(middleware.RequireInstitution(secret, h.Me)))

RequireInstitution answers 401 without a valid "Authorization: Bearer"
token. Handlers read the caller with InstitutionFrom(r.Context()).
OptionalInstitution attaches the caller when a token is present.

# CORS

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigins)(mux),
	}

Backed by rs/cors. Allows GET, POST, PATCH, PUT, DELETE, OPTIONS with
Content-Type and Authorization headers. "*" allows any origin.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.WriteError(w, err)

WriteError maps election error kinds to statuses: validation and state
conflicts 400, not found 404, permission 403, unauthorized 401, anything
else 500 with the detail logged and withheld.

DecodeAndValidate parses a body and checks its validate tags with
go-playground/validator, naming fields by their JSON keys.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, then X-Real-IP, then RemoteAddr.
*/
package middleware
