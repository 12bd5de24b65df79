// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the scrutin API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(eng, cfg)

Every route is wrapped in request logging. Routes marked (auth) require an
institution bearer token.

# Endpoints

Health:

	GET /health
	GET /

Authentication:

	POST /auth/institution/register
	POST /auth/institution/login
	POST /auth/voter/login

Institution (auth):

	GET   /institutions/me
	PATCH /institutions/me
	POST  /institutions/me/import_voters[?preview=true]
	GET   /institutions/me/imports
	POST  /institutions/me/imports/delete
	POST  /institutions/me/imports/force_delete

Elections:

	POST   /elections                           (auth)
	GET    /elections                           own, or ?institution_id=
	GET    /elections/{id}
	DELETE /elections/{id}                      (auth)
	GET    /elections/{id}/results
	GET    /elections/{id}/timeline?unit=&start=&end=
	POST   /elections/{id}/open_election        (auth)
	POST   /elections/{id}/close_election       (auth)
	POST   /elections/{id}/advance_to_round2    (auth)
	POST   /elections/{id}/finalize_winner      (auth)

Candidates:

	POST   /candidates          (auth, multipart)
	GET    /candidates?election_id=
	GET    /candidates/{id}
	DELETE /candidates/{id}     (auth)
	GET    /candidates/{id}/photo

Voters (auth):

	POST   /voters
	GET    /voters
	GET    /voters/summary
	PATCH  /voters/{id}
	DELETE /voters/{id}

Voting (public):

	POST /votes/cast_vote
	GET  /votes/has_voted?voter_id=&election_id=
*/
package router
