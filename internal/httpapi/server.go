package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/avelardo/infratrack/internal/auth"
	"github.com/avelardo/infratrack/internal/service"
)

// SessionCookie carries the session token between requests.
const SessionCookie = "infratrack_session"

// Server exposes the portal workflow as action-style JSON endpoints.
type Server struct {
	auth       service.AuthService
	workflow   service.WorkflowService
	monitoring service.MonitoringService
	reports    service.ReportService
	logger     *slog.Logger

	httpServer *http.Server
}

// NewServer wires the HTTP surface over the service layer.
func NewServer(
	authSvc service.AuthService,
	workflowSvc service.WorkflowService,
	monitoringSvc service.MonitoringService,
	reportSvc service.ReportService,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		auth:       authSvc,
		workflow:   workflowSvc,
		monitoring: monitoringSvc,
		reports:    reportSvc,
		logger:     logger,
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/api", s.handleAPI)
	r.Post("/api", s.handleAPI)

	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(r)
}

// ListenAndServe starts the server; ctx cancellation triggers a graceful
// shutdown.
func (s *Server) ListenAndServe(ctx context.Context, host, port string) error {
	addr := net.JoinHostPort(host, port)
	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.Router(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()
	s.logger.Info("server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"action", r.URL.Query().Get("action"),
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}

// mutatingActions require POST and a valid CSRF token. The CSRF check runs
// before authorization: a request without a token never reaches RBAC.
var mutatingActions = map[string]bool{
	"logout":               true,
	"register_project":     true,
	"decide_project":       true,
	"set_project_priority": true,
	"change_status":        true,
	"submit_progress":      true,
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	if action == "" && r.Method == http.MethodPost {
		action = r.PostFormValue("action")
	}
	if action == "" {
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Success: false, Message: "missing action parameter"})
		return
	}

	// Login is the only action reachable without a session.
	if action == "login" {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, envelope{Success: false, Message: "login requires POST"})
			return
		}
		s.handleLogin(w, r)
		return
	}

	identity, err := s.auth.Resolve(r.Context(), sessionToken(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	r = r.WithContext(auth.WithIdentity(r.Context(), identity))

	if mutatingActions[action] {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, envelope{Success: false, Message: "this action requires POST"})
			return
		}
		if err := auth.VerifyCSRF(identity.CSRFToken, csrfToken(r)); err != nil {
			writeError(w, s.logger, err)
			return
		}
	}

	// Logout needs a session and a CSRF token, but no permission.
	if action == "logout" {
		s.handleLogout(w, r)
		return
	}

	if err := auth.AuthorizeAction(identity, action); err != nil {
		writeError(w, s.logger, err)
		return
	}

	switch action {
	case "register_project":
		s.handleRegisterProject(w, r, identity)
	case "load_projects":
		s.handleLoadProjects(w, r)
	case "decide_project":
		s.handleDecideProject(w, r, identity)
	case "change_status":
		s.handleChangeStatus(w, r, identity)
	case "load_priority_projects":
		s.handleLoadPriorityProjects(w, r)
	case "set_project_priority":
		s.handleSetPriority(w, r, identity)
	case "load_monitoring":
		s.handleLoadMonitoring(w, r)
	case "load_risk_alerts":
		s.handleLoadRiskAlerts(w, r)
	case "load_decision_logs":
		s.handleLoadDecisionLogs(w, r)
	case "load_reports_summary":
		s.handleLoadReportsSummary(w, r)
	case "export_report":
		s.handleExportReport(w, r)
	case "submit_progress":
		s.handleSubmitProgress(w, r, identity)
	default:
		// AuthorizeAction fails closed on unmapped actions, so this is
		// unreachable unless the dispatch table and permission map drift.
		writeJSON(w, http.StatusForbidden, envelope{Success: false, Message: "unknown action"})
	}
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get("X-Session-Token")
}

func csrfToken(r *http.Request) string {
	if t := r.Header.Get("X-CSRF-Token"); t != "" {
		return t
	}
	return r.PostFormValue("csrf_token")
}
