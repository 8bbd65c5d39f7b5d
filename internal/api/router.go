package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vitaltrack/vitaltrack/internal/middleware"
	"github.com/vitaltrack/vitaltrack/internal/services"
	"github.com/vitaltrack/vitaltrack/internal/utils"
)

// storeTimeout bounds every persistence call made on behalf of one request.
const storeTimeout = 5 * time.Second

type Router struct {
	auth       *services.AuthService
	missions   *services.MissionService
	challenges *services.ChallengeService
	dashboard  *services.DashboardService
}

func NewRouter(auth *services.AuthService, missions *services.MissionService, challenges *services.ChallengeService, dashboard *services.DashboardService) *Router {
	return &Router{auth: auth, missions: missions, challenges: challenges, dashboard: dashboard}
}

// Register wires all API routes onto mux. Callers must run the handler chain
// (locale, auth claims) around the mux; RequireAuth only checks what WithAuth
// has already attached to the request context.
func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", rt.handleRegister) // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)       // POST

	mux.Handle("/api/missions/questions", middleware.RequireAuth(http.HandlerFunc(rt.handleQuestions))) // GET
	mux.Handle("/api/missions/state", middleware.RequireAuth(http.HandlerFunc(rt.handleMissionState)))  // GET
	mux.Handle("/api/missions/answer", middleware.RequireAuth(http.HandlerFunc(rt.handleMissionAnswer))) // POST
	mux.Handle("/api/missions/complete", middleware.RequireAuth(http.HandlerFunc(rt.handleMissionComplete))) // POST

	mux.Handle("/api/dashboard/summary", middleware.RequireAuth(http.HandlerFunc(rt.handleDashboardSummary))) // GET

	mux.HandleFunc("/api/challenges", rt.handleChallenges) // GET (public), POST (admin)
	mux.Handle("/api/challenges/", middleware.RequireAdmin(http.HandlerFunc(rt.handleChallengeByID))) // PUT, DELETE

	mux.Handle("/api/sessions", middleware.RequireAuth(http.HandlerFunc(rt.handleSessions)))       // GET, POST
	mux.Handle("/api/sessions/", middleware.RequireAdmin(http.HandlerFunc(rt.handleSessionStatus))) // POST {id}/status
}

// reqCtx caps the persistence work for one request. Timeouts on the primary
// answer write surface to the client as a retryable 504.
func reqCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), storeTimeout)
}

// requestDate resolves the caller-supplied day. The API is the single
// authority for "today": UTC on the server clock unless an explicit
// YYYY-MM-DD date param is given.
func requestDate(r *http.Request) string {
	if d := r.URL.Query().Get("date"); d != "" {
		return d
	}
	return time.Now().UTC().Format(services.DateLayout)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]string{"error": se.Message})
		return
	}
	switch {
	case errors.Is(err, services.ErrInvalidAnswer):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrOutOfSequence), errors.Is(err, services.ErrAlreadyCompleted):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrPersistenceTimeout):
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// --- auth ---

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()
	res, err := rt.auth.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "user_id": res.UserID})
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()
	res, err := rt.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "user_id": res.UserID, "is_admin": res.Admin})
}

// --- daily missions ---

func (rt *Router) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	catalog := rt.missions.Catalog()
	type sectionOut struct {
		Section   services.Section    `json:"section"`
		Title     string              `json:"title"`
		Questions []services.Question `json:"questions"`
	}
	var out []sectionOut
	for _, s := range []services.Section{services.SectionMorning, services.SectionHabits, services.SectionMindset} {
		out = append(out, sectionOut{
			Section:   s,
			Title:     utils.T(locale, "section."+string(s)),
			Questions: catalog.BySection(s),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": out, "total": catalog.Len()})
}

func (rt *Router) handleMissionState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uid, _ := middleware.UserIDFromContext(r.Context())
	date := requestDate(r)
	ctx, cancel := reqCtx(r)
	defer cancel()
	state, err := rt.missions.Resume(ctx, uid, date)
	if err != nil {
		writeError(w, err)
		return
	}
	catalog := rt.missions.Catalog()
	resp := map[string]any{
		"date":         date,
		"cursor":       state.Cursor,
		"answers":      state.Answers,
		"total_points": state.TotalPoints,
		"is_completed": state.IsCompleted,
		"streak_days":  state.StreakDays,
		"progress":     math.Round(float64(state.Cursor) / float64(catalog.Len()) * 100),
	}
	if state.Cursor < catalog.Len() && !state.IsCompleted {
		q := catalog.At(state.Cursor)
		resp["current_question"] = q
	}
	writeJSON(w, http.StatusOK, resp)
}

// answerValue accepts the raw JSON value a question widget produces: strings
// for choices and text, numbers for scales, booleans for yes/no.
func answerValue(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("value required")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == math.Trunc(n) {
			return strconv.Itoa(int(n)), nil
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b), nil
	}
	return "", errors.New("value must be a string, number or boolean")
}

func (rt *Router) handleMissionAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		QuestionID string          `json:"question_id"`
		Value      json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	value, err := answerValue(req.Value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	uid, _ := middleware.UserIDFromContext(r.Context())
	date := requestDate(r)
	ctx, cancel := reqCtx(r)
	defer cancel()
	res, err := rt.missions.SubmitAnswer(ctx, uid, date, req.QuestionID, value)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]any{
		"question_id":   res.QuestionID,
		"cursor":        res.Cursor,
		"points_earned": res.PointsEarned,
		"completed":     res.Completed,
	}
	if res.Completed {
		resp["total_points"] = res.TotalPoints
		resp["message"] = utils.T(middleware.LocaleFromContext(r.Context()), "mission.completed")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) handleMissionComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uid, _ := middleware.UserIDFromContext(r.Context())
	date := requestDate(r)
	ctx, cancel := reqCtx(r)
	defer cancel()
	total, err := rt.missions.Complete(ctx, uid, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "total_points": total})
}

// --- dashboard ---

func (rt *Router) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uid, _ := middleware.UserIDFromContext(r.Context())
	ctx, cancel := reqCtx(r)
	defer cancel()
	sum, err := rt.dashboard.Summary(ctx, uid, requestDate(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// --- challenges (admin CRUD, public listing) ---

func (rt *Router) handleChallenges(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		onlyActive := !middleware.IsAdminFromContext(r.Context())
		ctx, cancel := reqCtx(r)
		defer cancel()
		list, err := rt.challenges.ListChallenges(ctx, onlyActive)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"challenges": list})
	case http.MethodPost:
		if !middleware.IsAdminFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		var c services.Challenge
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ctx, cancel := reqCtx(r)
		defer cancel()
		created, err := rt.challenges.CreateChallenge(ctx, &c)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, created)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (rt *Router) handleChallengeByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/challenges/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()
	switch r.Method {
	case http.MethodPut:
		var c services.Challenge
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c.ID = id
		updated, err := rt.challenges.UpdateChallenge(ctx, &c)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := rt.challenges.DeleteChallenge(ctx, id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// --- appointment sessions ---

func (rt *Router) handleSessions(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	ctx, cancel := reqCtx(r)
	defer cancel()
	switch r.Method {
	case http.MethodGet:
		list, err := rt.challenges.ListUserSessions(ctx, uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": list})
	case http.MethodPost:
		var req struct {
			ScheduledAt time.Time `json:"scheduled_at"`
			Notes       string    `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		us, err := rt.challenges.ScheduleSession(ctx, uid, req.ScheduledAt, req.Notes)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, us)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// POST /api/sessions/{id}/status
func (rt *Router) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "status" || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()
	us, err := rt.challenges.TransitionSession(ctx, parts[0], req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, us)
}
