// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifiers, password hashing and institution tokens.

# Identifiers

Every stored entity uses a random UUID:

	id := auth.NewID()

# Passwords

Institution passwords are hashed with bcrypt:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, password)

# Tokens

Institutions authenticate with an HS256 JWT carrying their ID as subject:

	token, err := auth.IssueToken(institutionID, username, secret, ttl, time.Now())
	claims, err := auth.ParseToken(token, secret)

ParseToken rejects other signing algorithms, expired tokens and tokens
without a subject. Voters do not receive tokens; they identify by voter ID.
*/
package auth
