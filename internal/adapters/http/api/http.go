// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/recall/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// RecordAnswer appends one answer to a user's outcome log; returns
	// whether the submission id had been seen before.
	RecordAnswer(ctx context.Context, userID string, sub model.Submission) (bool, error)

	// Read operations expose the derived statistics.
	Stats(ctx context.Context, userID string) (model.Snapshot, error)
	DailyStats(ctx context.Context, userID string, days int) ([]model.DailyStat, error)
	History(ctx context.Context, userID string, limit, offset int) ([]model.OutcomeRecord, error)
}

// Server wires HTTP routes for the study API.
type Server struct {
	healthHandler  *HealthHandler
	debugHandler   *DebugHandler
	answerHandler  *AnswerHandler
	statsHandler   *StatsHandler
	historyHandler *HistoryHandler
	auth           *Authenticator
}

// NewServer creates a new API server with all handlers. authToken is the
// shared bearer credential; issuance lives outside this system.
func NewServer(deps Dependencies, statsProvider StatsProvider, authToken string) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		debugHandler:   NewDebugHandler(statsProvider),
		answerHandler:  NewAnswerHandler(deps),
		statsHandler:   NewStatsHandler(deps),
		historyHandler: NewHistoryHandler(deps),
		auth:           NewAuthenticator(authToken),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/debug/service", s.debugHandler.HandleServiceStats)
	mux.HandleFunc("/api/study/answer", MetricsMiddleware(s.auth.Require(s.answerHandler.HandlePostAnswer), "answer"))
	mux.HandleFunc("/api/study/stats/daily", MetricsMiddleware(s.auth.Require(s.statsHandler.HandleGetDailyStats), "stats_daily"))
	mux.HandleFunc("/api/study/stats", MetricsMiddleware(s.auth.Require(s.statsHandler.HandleGetStats), "stats"))
	mux.HandleFunc("/api/study/history", MetricsMiddleware(s.auth.Require(s.historyHandler.HandleGetHistory), "history"))
}

// answerRequest mirrors the write endpoint schema for POST /api/study/answer.
type answerRequest struct {
	SubjectID    string `json:"subjectId"`
	Correct      *bool  `json:"correct"`
	Timestamp    string `json:"timestamp,omitempty"`
	SubmissionID string `json:"submissionId,omitempty"`
}

func (a answerRequest) validate() error {
	switch {
	case strings.TrimSpace(a.SubjectID) == "":
		return errors.New("missing subjectId")
	case a.Correct == nil:
		return errors.New("missing correct")
	}
	if a.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, a.Timestamp); err != nil {
			return errors.New("invalid timestamp; must be RFC3339")
		}
	}
	return nil
}

func (a answerRequest) toSubmission() model.Submission {
	sub := model.Submission{
		SubmissionID: a.SubmissionID,
		SubjectID:    a.SubjectID,
		Correct:      *a.Correct,
	}
	if a.Timestamp != "" {
		sub.Timestamp, _ = time.Parse(time.RFC3339, a.Timestamp)
	}
	return sub
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
