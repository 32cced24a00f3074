// Package api exposes the REST surface of the estimation service.
// Validation happens here, before any core logic runs; errors are returned
// as JSON {"message": ...} with 400 for validation failures, 404 for missing
// records and 500 for everything else.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/teamsizer/sizeup/internal/cache"
	"github.com/teamsizer/sizeup/internal/httputil"
	"github.com/teamsizer/sizeup/internal/importer"
	"github.com/teamsizer/sizeup/internal/repository"
	"github.com/teamsizer/sizeup/internal/service"
	"github.com/teamsizer/sizeup/internal/task"
)

const (
	recentTasksLimit = 10

	statsCacheKey  = "stats"
	recentCacheKey = "recent_tasks"
)

type API struct {
	estimation *service.EstimationService
	sessions   *service.SessionCoordinator
	store      repository.Store
	jira       *importer.JiraClient
	cache      *cache.Cache
	mux        *http.ServeMux
}

// NewAPI wires the handlers. jira and c may be nil; the Jira import endpoint
// rejects requests and reads skip caching, respectively. wsHandler serves
// the /ws endpoint.
func NewAPI(
	estimation *service.EstimationService,
	sessions *service.SessionCoordinator,
	store repository.Store,
	jira *importer.JiraClient,
	c *cache.Cache,
	wsHandler http.Handler,
) *API {
	a := &API{
		estimation: estimation,
		sessions:   sessions,
		store:      store,
		jira:       jira,
		cache:      c,
		mux:        http.NewServeMux(),
	}

	a.setupRoutes(wsHandler)
	return a
}

func (a *API) setupRoutes(wsHandler http.Handler) {
	a.mux.HandleFunc("POST /api/tasks/predict", a.predictTask)
	a.mux.HandleFunc("POST /api/tasks", a.createTask)
	a.mux.HandleFunc("GET /api/tasks/recent", a.recentTasks)
	a.mux.HandleFunc("GET /api/stats", a.stats)
	a.mux.HandleFunc("POST /api/tasks/{id}/feedback", a.taskFeedback)
	a.mux.HandleFunc("PUT /api/tasks/{id}/size", a.updateTaskSize)
	a.mux.HandleFunc("POST /api/tasks/{id}/vote", a.voteTask)
	a.mux.HandleFunc("POST /api/tasks/{id}/finalize", a.finalizeTask)

	a.mux.HandleFunc("POST /api/sessions", a.createSession)
	a.mux.HandleFunc("GET /api/sessions", a.listSessions)
	a.mux.HandleFunc("POST /api/sessions/{id}/close", a.closeSession)
	a.mux.HandleFunc("GET /api/sessions/{id}/tasks", a.sessionTasks)
	a.mux.HandleFunc("POST /api/sessions/{id}/import", a.importCSV)
	a.mux.HandleFunc("POST /api/sessions/{id}/jira-import", a.importJira)

	a.mux.HandleFunc("POST /api/login", a.login)
	a.mux.HandleFunc("GET /api/team-members", a.teamMembers)

	if wsHandler != nil {
		a.mux.Handle("/ws", wsHandler)
	}
	a.mux.Handle("GET /metrics", promhttp.Handler())
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		httputil.WriteJSONError(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// invalidateReadCaches drops the cached stats and recent-tasks payloads
// after any write that could change them.
func (a *API) invalidateReadCaches(ctx context.Context) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Invalidate(ctx, statsCacheKey, recentCacheKey); err != nil {
		log.Printf("failed to invalidate read caches: %v", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, err error, notFoundMsg, fallbackMsg string) {
	if errors.Is(err, repository.ErrNotFound) {
		httputil.WriteJSONError(w, notFoundMsg, http.StatusNotFound)
		return
	}

	log.Printf("%s: %v", fallbackMsg, err)
	httputil.WriteJSONError(w, fallbackMsg, http.StatusInternalServerError)
}

type predictRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (a *API) predictTask(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		httputil.WriteJSONError(w, "Title is required", http.StatusBadRequest)
		return
	}
	if req.Description == "" {
		httputil.WriteJSONError(w, "Description is required", http.StatusBadRequest)
		return
	}

	prediction, err := a.estimation.Predict(r.Context(), req.Title, req.Description)
	if err != nil {
		a.writeError(w, err, "", "Failed to predict task size")
		return
	}

	httputil.WriteJSON(w, prediction, http.StatusOK)
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTaskInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		httputil.WriteJSONError(w, "Title is required", http.StatusBadRequest)
		return
	}
	if req.Description == "" {
		httputil.WriteJSONError(w, "Description is required", http.StatusBadRequest)
		return
	}
	if !task.ValidSize(req.Size) {
		httputil.WriteJSONError(w, "Invalid size", http.StatusBadRequest)
		return
	}

	created, err := a.estimation.CreateTask(r.Context(), req)
	if err != nil {
		a.writeError(w, err, "", "Failed to save task")
		return
	}

	a.invalidateReadCaches(r.Context())
	httputil.WriteJSON(w, created, http.StatusCreated)
}

func (a *API) recentTasks(w http.ResponseWriter, r *http.Request) {
	if a.cache != nil {
		var cached []*task.Task
		if err := a.cache.Get(r.Context(), recentCacheKey, &cached); err == nil {
			httputil.WriteJSON(w, cached, http.StatusOK)
			return
		}
	}

	tasks, err := a.store.GetRecentTasks(r.Context(), recentTasksLimit)
	if err != nil {
		a.writeError(w, err, "", "Failed to get recent tasks")
		return
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}

	if a.cache != nil {
		if err := a.cache.Set(r.Context(), recentCacheKey, tasks); err != nil {
			log.Printf("failed to cache recent tasks: %v", err)
		}
	}

	httputil.WriteJSON(w, tasks, http.StatusOK)
}

func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	if a.cache != nil {
		var cached repository.Stats
		if err := a.cache.Get(r.Context(), statsCacheKey, &cached); err == nil {
			httputil.WriteJSON(w, cached, http.StatusOK)
			return
		}
	}

	stats, err := a.store.GetTaskStats(r.Context())
	if err != nil {
		a.writeError(w, err, "", "Failed to get stats")
		return
	}

	if a.cache != nil {
		if err := a.cache.Set(r.Context(), statsCacheKey, stats); err != nil {
			log.Printf("failed to cache stats: %v", err)
		}
	}

	httputil.WriteJSON(w, stats, http.StatusOK)
}

type feedbackRequest struct {
	ActualSize    task.Size `json:"actualSize"`
	PredictedSize task.Size `json:"predictedSize"`
}

func (a *API) taskFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !task.ValidSize(req.ActualSize) {
		httputil.WriteJSONError(w, "Invalid size", http.StatusBadRequest)
		return
	}

	updated, err := a.sessions.RecordFeedback(r.Context(), r.PathValue("id"), req.PredictedSize, req.ActualSize)
	if err != nil {
		a.writeError(w, err, "Task not found", "Failed to update task feedback")
		return
	}

	a.invalidateReadCaches(r.Context())
	httputil.WriteJSON(w, updated, http.StatusOK)
}

type sizeRequest struct {
	Size task.Size `json:"size"`
}

func (a *API) updateTaskSize(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !task.ValidSize(req.Size) {
		httputil.WriteJSONError(w, "Invalid size", http.StatusBadRequest)
		return
	}

	updated, err := a.sessions.UpdateTaskSize(r.Context(), r.PathValue("id"), req.Size)
	if err != nil {
		a.writeError(w, err, "Task not found", "Failed to update task size")
		return
	}

	a.invalidateReadCaches(r.Context())
	httputil.WriteJSON(w, updated, http.StatusOK)
}

type voteRequest struct {
	UserID   string    `json:"userId"`
	UserName string    `json:"userName"`
	Size     task.Size `json:"size"`
}

func (a *API) voteTask(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		httputil.WriteJSONError(w, "User ID is required", http.StatusBadRequest)
		return
	}
	if req.UserName == "" {
		httputil.WriteJSONError(w, "User name is required", http.StatusBadRequest)
		return
	}
	if !task.ValidSize(req.Size) {
		httputil.WriteJSONError(w, "Invalid size", http.StatusBadRequest)
		return
	}

	updated, err := a.sessions.Vote(r.Context(), r.PathValue("id"), task.Vote{
		UserID:   req.UserID,
		UserName: req.UserName,
		Size:     req.Size,
	})
	if err != nil {
		a.writeError(w, err, "Task not found", "Failed to vote on task")
		return
	}

	httputil.WriteJSON(w, updated, http.StatusOK)
}

type finalizeRequest struct {
	FinalSize task.Size `json:"finalSize"`
}

func (a *API) finalizeTask(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !task.ValidSize(req.FinalSize) {
		httputil.WriteJSONError(w, "Invalid size", http.StatusBadRequest)
		return
	}

	updated, err := a.sessions.Finalize(r.Context(), r.PathValue("id"), req.FinalSize)
	if err != nil {
		a.writeError(w, err, "Task not found", "Failed to finalize task")
		return
	}

	a.invalidateReadCaches(r.Context())
	httputil.WriteJSON(w, updated, http.StatusOK)
}

type sessionRequest struct {
	Name string `json:"name"`
}

func (a *API) createSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := a.sessions.CreateSession(r.Context(), req.Name)
	if errors.Is(err, service.ErrEmptySessionName) {
		httputil.WriteJSONError(w, "Session name is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		a.writeError(w, err, "", "Failed to create session")
		return
	}

	httputil.WriteJSON(w, created, http.StatusCreated)
}

func (a *API) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.sessions.ActiveSessions(r.Context())
	if err != nil {
		a.writeError(w, err, "", "Failed to get sessions")
		return
	}
	if sessions == nil {
		sessions = []*task.Session{}
	}

	httputil.WriteJSON(w, sessions, http.StatusOK)
}

func (a *API) closeSession(w http.ResponseWriter, r *http.Request) {
	closed, err := a.sessions.CloseSession(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err, "Session not found", "Failed to close session")
		return
	}

	httputil.WriteJSON(w, closed, http.StatusOK)
}

func (a *API) sessionTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.sessions.SessionTasks(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err, "", "Failed to get session tasks")
		return
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}

	httputil.WriteJSON(w, tasks, http.StatusOK)
}

type csvImportRequest struct {
	CSVData string `json:"csvData"`
}

func (a *API) importCSV(w http.ResponseWriter, r *http.Request) {
	var req csvImportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CSVData == "" {
		httputil.WriteJSONError(w, "CSV data is required", http.StatusBadRequest)
		return
	}

	imports, err := importer.ParseCSV(req.CSVData)
	if err != nil {
		log.Printf("error parsing CSV: %v", err)
		httputil.WriteJSONError(w, "Invalid CSV format", http.StatusBadRequest)
		return
	}

	tasks, err := a.estimation.ImportTasks(r.Context(), r.PathValue("id"), imports)
	if err != nil {
		a.writeError(w, err, "", "Failed to import tasks")
		return
	}

	a.invalidateReadCaches(r.Context())
	httputil.WriteJSON(w, tasks, http.StatusCreated)
}

type jiraImportRequest struct {
	ProjectKey string `json:"projectKey"`
	MaxResults int    `json:"maxResults"`
}

func (a *API) importJira(w http.ResponseWriter, r *http.Request) {
	if !a.jira.Configured() {
		httputil.WriteJSONError(w, "Jira is not configured", http.StatusBadRequest)
		return
	}

	var req jiraImportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProjectKey == "" {
		httputil.WriteJSONError(w, "Project key is required", http.StatusBadRequest)
		return
	}

	imports, err := a.jira.FetchProjectIssues(r.Context(), req.ProjectKey, req.MaxResults)
	if err != nil {
		a.writeError(w, err, "", "Failed to fetch issues from Jira")
		return
	}

	tasks, err := a.estimation.ImportTasks(r.Context(), r.PathValue("id"), imports)
	if err != nil {
		a.writeError(w, err, "", "Failed to import tasks")
		return
	}

	a.invalidateReadCaches(r.Context())
	httputil.WriteJSON(w, tasks, http.StatusCreated)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userView strips the password column from API responses. Credentials are
// still stored and compared in plaintext; that weakness is documented, not
// fixed here.
type userView struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"displayName"`
}

func viewUser(u *task.User) userView {
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil || user.Password != req.Password {
		httputil.WriteJSONError(w, "Login failed: invalid username or password", http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, map[string]any{"user": viewUser(user)}, http.StatusOK)
}

func (a *API) teamMembers(w http.ResponseWriter, r *http.Request) {
	users, err := a.store.GetUsers(r.Context())
	if err != nil {
		a.writeError(w, err, "", "Failed to get team members")
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, viewUser(u))
	}

	httputil.WriteJSON(w, map[string]any{"users": views}, http.StatusOK)
}
