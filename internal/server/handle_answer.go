package server

import (
	"log/slog"
	"net/http"

	"github.com/lybotics/stagequest/internal/engine"
	"github.com/lybotics/stagequest/internal/quest"
)

// AnswerRequest carries a raw answer. Which fields are read depends on the
// challenge type.
type AnswerRequest struct {
	Choice    *int        `json:"choice,omitempty"`
	Text      string      `json:"text,omitempty"`
	Click     *ClickPoint `json:"click,omitempty"`
	Collected int         `json:"collected,omitempty"`
	CodeFixed bool        `json:"codeFixed,omitempty"`
	Elapsed   int         `json:"elapsed,omitempty"`
}

// ClickPoint is an image-hunt click in image coordinates.
type ClickPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (req AnswerRequest) submission() quest.Submission {
	sub := quest.Submission{
		Choice:    req.Choice,
		Text:      req.Text,
		Collected: req.Collected,
		CodeFixed: req.CodeFixed,
		Elapsed:   req.Elapsed,
	}
	if req.Click != nil {
		sub.Click = &quest.Point{X: req.Click.X, Y: req.Click.Y}
	}
	return sub
}

func handleAnswer(logger *slog.Logger, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stageID, index, err := challengeParams(r)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}

		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		out, err := eng.Submit(r.Context(), sessionFrom(r), stageID, index, req.submission())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
