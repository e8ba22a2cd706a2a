package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/lybotics/stagequest/internal/engine"
)

// HealthResponse documents the /healthz body.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

type operation struct {
	method, path, summary, description string

	req    any
	resp   any
	errors []int
	// contentType overrides application/json for the success response.
	contentType string
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Lybotics Stage Quest API"
	r.Spec.Info.Version = "1.0.0"
	r.Spec.Info.WithDescription("Backend API for the Lybotics timed-stage quest.")

	ops := []operation{
		{
			method:      http.MethodGet,
			path:        "/healthz",
			summary:     "Health check",
			description: "Returns the health status of the storage backend.",
			resp:        HealthResponse{},
			errors:      []int{http.StatusServiceUnavailable},
		},
		{
			method:      http.MethodPost,
			path:        "/api/login",
			summary:     "Log in",
			description: "Registers the player on first login, otherwise updates name and phone. Returns a session token.",
			req:         LoginRequest{},
			resp:        LoginResponse{},
			errors:      []int{http.StatusBadRequest, http.StatusConflict, http.StatusServiceUnavailable},
		},
		{
			method:      http.MethodPost,
			path:        "/api/logout",
			summary:     "Log out",
			description: "Ends the session and cancels its timers. Requires Bearer token.",
			errors:      []int{http.StatusUnauthorized},
		},
		{
			method:      http.MethodGet,
			path:        "/api/session",
			summary:     "Current player",
			description: "Returns the logged-in player. Requires Bearer token.",
			resp:        SessionResponse{},
			errors:      []int{http.StatusUnauthorized},
		},
		{
			method:      http.MethodGet,
			path:        "/api/stages",
			summary:     "List stages",
			description: "Every stage with its status and the player's progress. Requires Bearer token.",
			resp:        []engine.StageView{},
			errors:      []int{http.StatusUnauthorized},
		},
		{
			method:      http.MethodGet,
			path:        "/api/stages/{stageID}",
			summary:     "Open stage",
			description: "Opens an unlocked stage and returns its challenges without answers. Requires Bearer token.",
			req:         stagePath{},
			resp:        engine.StageView{},
			errors:      []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusConflict},
		},
		{
			method:      http.MethodPost,
			path:        "/api/stages/{stageID}/leave",
			summary:     "Leave stage",
			description: "Returns to the stage list and cancels running countdowns. Requires Bearer token.",
			req:         stagePath{},
			errors:      []int{http.StatusUnauthorized},
		},
		{
			method:      http.MethodPost,
			path:        "/api/stages/{stageID}/challenges/{index}/start",
			summary:     "Start speed challenge",
			description: "Starts or restarts the countdown of a speed challenge. Requires Bearer token.",
			req:         challengePath{},
			resp:        engine.TimerView{},
			errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
		},
		{
			method:      http.MethodPost,
			path:        "/api/stages/{stageID}/challenges/{index}/answer",
			summary:     "Submit answer",
			description: "Evaluates and records an answer. A 503 response is retryable and nothing was recorded. Requires Bearer token.",
			req:         answerInput{},
			resp:        engine.Outcome{},
			errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusConflict, http.StatusServiceUnavailable},
		},
		{
			method:      http.MethodGet,
			path:        "/api/leaderboard",
			summary:     "Leaderboard",
			description: "Players ranked by completed stages, then total score.",
			req:         leaderboardQuery{},
			resp:        []LeaderboardRow{},
			errors:      []int{http.StatusBadRequest, http.StatusServiceUnavailable},
		},
		{
			method:      http.MethodGet,
			path:        "/api/countdown",
			summary:     "Next unlock",
			description: "Time remaining until the next stage unlocks.",
			resp:        engine.Countdown{},
		},
		{
			method:      http.MethodGet,
			path:        "/api/events",
			summary:     "SSE event stream",
			description: "Server-Sent Events for the player: answer_recorded, stage_completed, time_up, stage_unlocked, countdown. Pass token as query parameter.",
			req:         tokenQuery{},
			errors:      []int{http.StatusUnauthorized},
			contentType: "text/event-stream",
		},
		{
			method:      http.MethodGet,
			path:        "/ws/events",
			summary:     "WebSocket event stream",
			description: "The SSE events over a WebSocket. Pass token as query parameter.",
			req:         tokenQuery{},
			errors:      []int{http.StatusUnauthorized},
			contentType: "text/plain",
		},
		{
			method:      http.MethodPost,
			path:        "/api/admin/login",
			summary:     "Admin login",
			description: "Confirms admin access. When an admin password is configured, checks it and sets the admin_session cookie.",
			req:         AdminLoginRequest{},
			resp:        AdminMeResponse{},
			errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
		},
		{
			method:      http.MethodPost,
			path:        "/api/admin/logout",
			summary:     "Admin logout",
			description: "Clears the admin_session cookie.",
		},
		{
			method:      http.MethodGet,
			path:        "/api/admin/players",
			summary:     "Participants",
			description: "All players in registration order. Admin only.",
			resp:        []AdminPlayer{},
			errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
		},
		{
			method:      http.MethodGet,
			path:        "/api/admin/stats",
			summary:     "Stage statistics",
			description: "Completion count and percentage per stage. Admin only.",
			resp:        AdminStats{},
			errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
		},
		{
			method:      http.MethodGet,
			path:        "/api/admin/export",
			summary:     "Export",
			description: "Full JSON dump of every player. Admin only.",
			resp:        engine.ExportData{},
			errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
		},
	}

	for _, op := range ops {
		oc, _ := r.NewOperationContext(op.method, op.path)
		oc.SetSummary(op.summary)
		oc.SetDescription(op.description)
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		switch {
		case op.contentType != "":
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK), openapi.WithContentType(op.contentType))
		default:
			oc.AddRespStructure(op.resp, openapi.WithHTTPStatus(http.StatusOK))
		}
		for _, status := range op.errors {
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(status))
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

type stagePath struct {
	StageID int `path:"stageID"`
}

type challengePath struct {
	StageID int `path:"stageID"`
	Index   int `path:"index"`
}

type answerInput struct {
	challengePath
	AnswerRequest
}

type leaderboardQuery struct {
	Limit int `query:"limit"`
}

type tokenQuery struct {
	Token string `query:"token"`
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
