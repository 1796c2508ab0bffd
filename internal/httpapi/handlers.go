package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/avelardo/infratrack/internal/auth"
	"github.com/avelardo/infratrack/internal/domain"
	"github.com/avelardo/infratrack/internal/repository"
	"github.com/avelardo/infratrack/internal/service"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	session, identity, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeSuccess(w, map[string]any{
		"csrf_token": identity.CSRFToken,
		"employee": map[string]any{
			"id":        identity.EmployeeID,
			"username":  identity.Username,
			"full_name": identity.FullName,
			"role":      string(identity.Role),
		},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), sessionToken(r)); err != nil {
		writeError(w, s.logger, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeMessage(w, "logged out")
}

func (s *Server) handleRegisterProject(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	p := &domain.Project{
		Code:        r.PostFormValue("code"),
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		District:    r.PostFormValue("district"),
		Barangay:    r.PostFormValue("barangay"),
		CreatedBy:   identity.EmployeeID,
	}
	if raw := r.PostFormValue("budget"); raw != "" {
		budget, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, envelope{Success: false, Message: "budget must be a number"})
			return
		}
		p.Budget = budget
	}
	startDate, ok := parseDateParam(w, r.PostFormValue("start_date"), "start_date")
	if !ok {
		return
	}
	p.StartDate = startDate
	endDate, ok := parseDateParam(w, r.PostFormValue("end_date"), "end_date")
	if !ok {
		return
	}
	p.EndDate = endDate

	if err := s.workflow.RegisterProject(r.Context(), p); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeSuccess(w, projectDTO(p))
}

func (s *Server) handleLoadProjects(w http.ResponseWriter, r *http.Request) {
	mode := repository.QueueMode(r.URL.Query().Get("mode"))
	if mode != repository.QueueReviewed {
		mode = repository.QueuePending
	}
	rows, err := s.workflow.ListQueue(r.Context(), mode, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	out := make([]map[string]any, 0, len(rows))
	for i := range rows {
		row := projectDTO(&rows[i].Project)
		if rows[i].DecisionStatus != nil {
			row["decision_status"] = string(*rows[i].DecisionStatus)
			row["decision_note"] = rows[i].DecisionNote
			row["decided_by"] = rows[i].DecidedBy
			if rows[i].DecidedAt != nil {
				row["decided_at"] = rows[i].DecidedAt.Format(time.RFC3339)
			}
		}
		out = append(out, row)
	}
	writeSuccess(w, out)
}

func (s *Server) handleDecideProject(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	req := service.DecideProjectRequest{
		ProjectID: r.PostFormValue("project_id"),
		Decision:  r.PostFormValue("decision_status"),
		Note:      r.PostFormValue("decision_note"),
		ActorID:   identity.EmployeeID,
	}
	if raw := r.PostFormValue("budget_amount"); raw != "" {
		budget, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, envelope{Success: false, Message: "budget_amount must be a number"})
			return
		}
		req.BudgetAmount = budget
	}

	if err := s.workflow.DecideProject(r.Context(), req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeMessage(w, "decision recorded")
}

func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	projectID := r.PostFormValue("project_id")
	status := r.PostFormValue("status")
	if err := s.workflow.ChangeStatus(r.Context(), projectID, status, identity.EmployeeID); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeMessage(w, "status updated")
}

func (s *Server) handleLoadPriorityProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.workflow.ListPriorityProjects(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	out := make([]map[string]any, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectDTO(p))
	}
	writeSuccess(w, out)
}

func (s *Server) handleSetPriority(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	req := service.SetPriorityRequest{
		ProjectID: r.PostFormValue("project_id"),
		Level:     r.PostFormValue("priority_level"),
		SetUrgent: r.PostFormValue("set_urgent") == "1",
		ActorID:   identity.EmployeeID,
	}
	affected, err := s.workflow.SetPriority(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeSuccess(w, map[string]any{"affected": affected})
}

func (s *Server) handleLoadMonitoring(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := s.monitoring.Monitor(r.Context(), repository.MonitoringFilter{
		Search:     q.Get("search"),
		Status:     q.Get("status"),
		District:   q.Get("district"),
		Barangay:   q.Get("barangay"),
		Engineer:   q.Get("engineer"),
		Contractor: q.Get("contractor"),
		Priority:   q.Get("priority"),
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	out := make([]map[string]any, 0, len(rows))
	for _, m := range rows {
		row := map[string]any{
			"project_id": m.ProjectID,
			"code":       m.Code,
			"name":       m.Name,
			"status":     string(m.Status),
			"priority":   string(m.Priority),
			"budget":     m.Budget,
			"district":   m.District,
			"barangay":   m.Barangay,
			"is_delayed": m.IsDelayed,
		}
		if m.StartDate != nil {
			row["start_date"] = m.StartDate.Format("2006-01-02")
		}
		if m.EndDate != nil {
			row["end_date"] = m.EndDate.Format("2006-01-02")
		}
		if m.ProgressPct != nil {
			row["progress_pct"] = *m.ProgressPct
		}
		if m.EngineerName != nil {
			row["engineer"] = *m.EngineerName
		}
		if m.ContractorName != nil {
			row["contractor"] = *m.ContractorName
		}
		out = append(out, row)
	}
	writeSuccess(w, out)
}

func (s *Server) handleLoadRiskAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.monitoring.RiskAlerts(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	out := make([]map[string]any, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, map[string]any{
			"project_id": a.ProjectID,
			"code":       a.Code,
			"name":       a.Name,
			"type":       a.Type,
			"severity":   a.Severity,
			"message":    a.Message,
		})
	}
	writeSuccess(w, out)
}

func (s *Server) handleLoadDecisionLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	views, err := s.workflow.ListDecisionLogs(r.Context(), limit)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	out := make([]map[string]any, 0, len(views))
	for _, v := range views {
		out = append(out, map[string]any{
			"id":           v.Log.ID,
			"project_id":   v.Log.ProjectID,
			"project_code": v.ProjectCode,
			"project_name": v.ProjectName,
			"type":         v.Log.Type,
			"notes":        v.Log.Notes,
			"decided_by":   v.DeciderName,
			"created_at":   v.Log.CreatedAt.Format(time.RFC3339),
		})
	}
	writeSuccess(w, out)
}

func (s *Server) handleLoadReportsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reports.Summary(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeSuccess(w, map[string]any{
		"generated_at": summary.GeneratedAt.Format(time.RFC3339),
		"total_count":  summary.TotalCount,
		"total_budget": summary.TotalBudget,
		"by_status":    countsDTO(summary.ByStatus),
		"by_district":  countsDTO(summary.ByDistrict),
		"by_priority":  countsDTO(summary.ByPriority),
	})
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	reportType := r.URL.Query().Get("report_type")
	format := r.URL.Query().Get("format")
	export, err := s.reports.Export(r.Context(), reportType, format)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Body)
}

func (s *Server) handleSubmitProgress(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	projectID := r.PostFormValue("project_id")
	pct, err := strconv.ParseFloat(r.PostFormValue("progress_pct"), 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Success: false, Message: "progress_pct must be a number"})
		return
	}
	if err := s.workflow.SubmitProgress(r.Context(), projectID, pct, r.PostFormValue("note"), identity.EmployeeID); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeMessage(w, "progress recorded")
}

func projectDTO(p *domain.Project) map[string]any {
	row := map[string]any{
		"id":          p.ID,
		"code":        p.Code,
		"name":        p.Name,
		"description": p.Description,
		"status":      string(p.Status),
		"priority":    string(p.Priority),
		"budget":      p.Budget,
		"district":    p.District,
		"barangay":    p.Barangay,
	}
	if p.ApprovedBy != nil {
		row["approved_by"] = *p.ApprovedBy
	}
	if p.ApprovedAt != nil {
		row["approved_at"] = p.ApprovedAt.Format(time.RFC3339)
	}
	if p.RejectionReason != "" {
		row["rejection_reason"] = p.RejectionReason
	}
	if p.StartDate != nil {
		row["start_date"] = p.StartDate.Format("2006-01-02")
	}
	if p.EndDate != nil {
		row["end_date"] = p.EndDate.Format("2006-01-02")
	}
	return row
}

func countsDTO(counts []repository.StatusCount) []map[string]any {
	out := make([]map[string]any, 0, len(counts))
	for _, c := range counts {
		out = append(out, map[string]any{
			"key":          c.Key,
			"count":        c.Count,
			"total_budget": c.Budget,
		})
	}
	return out
}

// parseDateParam parses an optional YYYY-MM-DD form value. On parse failure
// it writes a 422 and reports not-ok.
func parseDateParam(w http.ResponseWriter, raw, field string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Success: false, Message: field + " must be YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}
