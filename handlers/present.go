// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/moznion/go-optional"

	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/engine"
	"github.com/danielhkuo/scrutin/middleware"
	"github.com/danielhkuo/scrutin/models"
)

// parseOptionalBody is ParseJSONBody that accepts an empty body
func parseOptionalBody(r *http.Request, v any) error {
	err := middleware.ParseJSONBody(r, v)
	if err == nil || errors.Is(err, io.EOF) {
		return middleware.Validate(v)
	}
	return election.Validation("invalid JSON body")
}

// actorOr401 writes 401 when the request carries no institution
func actorOr401(w http.ResponseWriter, r *http.Request) (engine.Actor, bool) {
	actor, ok := middleware.InstitutionFrom(r.Context())
	if !ok {
		middleware.WriteError(w, election.Unauthorized("authentication required"))
	}
	return actor, ok
}

func parseWindow(start, end string, loc *time.Location) (optional.Option[time.Time], optional.Option[time.Time], error) {
	s, err := election.ParseOptionalInstant(start, loc)
	if err != nil {
		return s, s, election.Validation("invalid start datetime format")
	}
	e, err := election.ParseOptionalInstant(end, loc)
	if err != nil {
		return s, e, election.Validation("invalid end datetime format")
	}
	return s, e, nil
}

func timePtr(o optional.Option[time.Time]) *time.Time {
	t, err := o.Take()
	if err != nil {
		return nil
	}
	return &t
}

func institutionResponse(inst election.Institution) models.InstitutionResponse {
	return models.InstitutionResponse{
		ID:          inst.ID,
		Username:    inst.Username,
		Email:       inst.Email,
		Name:        inst.Name,
		Description: inst.Description,
		CreatedAt:   inst.CreatedAt,
	}
}

func candidateResponse(c engine.CandidateView) models.CandidateResponse {
	resp := models.CandidateResponse{
		ID:         c.ID,
		ElectionID: c.ElectionID,
		Name:       c.Name,
		Bio:        c.Bio,
		Position:   c.Position,
		VoteCount:  c.VoteCount,
		CreatedAt:  c.CreatedAt,
	}
	if c.PhotoKey != "" {
		resp.PhotoURL = "/candidates/" + c.ID + "/photo"
	}
	return resp
}

func electionResponse(v engine.ElectionView) models.ElectionResponse {
	resp := models.ElectionResponse{
		ID:                v.ID,
		InstitutionID:     v.InstitutionID,
		Title:             v.Title,
		Description:       v.Description,
		ScrutinType:       string(v.ScrutinType),
		MajorityThreshold: v.MajorityThreshold,
		AdvanceThreshold:  v.AdvanceThreshold,
		CurrentRound:      v.CurrentRound,
		Start:             timePtr(v.Start),
		End:               timePtr(v.End),
		Closed:            v.Closed,
		IsOpen:            v.IsOpen,
		VotedVotersCount:  v.VotedVoters,
		Candidates:        make([]models.CandidateResponse, 0, len(v.Candidates)),
		CreatedAt:         v.CreatedAt,
	}
	for _, c := range v.Candidates {
		resp.Candidates = append(resp.Candidates, candidateResponse(c))
		if v.FinalizedWinner != nil && v.FinalizedWinner.ID == c.ID {
			winner := candidateResponse(c)
			resp.FinalizedWinner = &winner
		}
	}
	return resp
}

func voterResponse(v election.Voter) models.VoterResponse {
	return models.VoterResponse{
		ID:         v.ID,
		Identifier: v.Identifier,
		Name:       v.Name,
		Eligible:   v.Eligible,
		ImportID:   v.ImportID,
		CreatedAt:  v.CreatedAt,
	}
}

func importResponse(imp election.VoterImport) models.ImportResponse {
	return models.ImportResponse{
		ID:         imp.ID,
		Filename:   imp.Filename,
		UploadedBy: imp.UploadedBy,
		UploadedAt: imp.UploadedAt,
		TotalRows:  imp.TotalRows,
		Created:    imp.Created,
		Updated:    imp.Updated,
	}
}

func resultsResponse(res engine.Results) models.ResultsResponse {
	el, t := res.Election, res.Tally
	resp := models.ResultsResponse{
		ElectionID:        el.ID,
		ElectionTitle:     el.Title,
		TotalVotes:        t.TotalVotes,
		ParticipationRate: t.ParticipationRate,
		Candidates:        t.Rows(),
		NullVotes:         t.Null.Votes,
		PercentNull:       t.Null.Percent,
		Status:            string(res.Resolution.Status),
		Winner:            res.Resolution.Winner,
	}
	if res.Resolution.Status == election.StatusSecondRoundRequired {
		round, majority, advance := el.CurrentRound, el.MajorityThreshold, el.AdvanceThreshold
		resp.QualifiedCandidates = res.Resolution.Qualified
		resp.ElectionCurrentRound = &round
		resp.ElectionMajorityThreshold = &majority
		resp.ElectionAdvanceThreshold = &advance
	}
	return resp
}
