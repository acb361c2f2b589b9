// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/recall/pkg/metrics"
)

// AnswerHandler handles answer submissions.
type AnswerHandler struct {
	deps Dependencies
}

// NewAnswerHandler creates a new answer handler.
func NewAnswerHandler(deps Dependencies) *AnswerHandler {
	return &AnswerHandler{deps: deps}
}

// HandlePostAnswer handles POST /api/study/answer requests.
func (h *AnswerHandler) HandlePostAnswer(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_answer"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordAnswerRejected()
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		metrics.RecordAnswerRejected()
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	duplicate, err := h.deps.RecordAnswer(r.Context(), UserID(r), req.toSubmission())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}

	writeJSON(w, http.StatusOK, ackResponse{Status: "recorded", Duplicate: duplicate})
}
