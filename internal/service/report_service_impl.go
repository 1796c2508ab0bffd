package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"html"
	"strconv"
	"time"

	"github.com/avelardo/infratrack/internal/domain"
	"github.com/avelardo/infratrack/internal/repository"
)

type reportService struct {
	monitoring repository.MonitoringRepo
}

// NewReportService wires report aggregation and export rendering.
func NewReportService(monitoring repository.MonitoringRepo) ReportService {
	return &reportService{monitoring: monitoring}
}

func (s *reportService) Summary(ctx context.Context) (*ReportSummary, error) {
	byStatus, err := s.monitoring.SummaryByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byDistrict, err := s.monitoring.SummaryByDistrict(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.monitoring.SummaryByPriority(ctx)
	if err != nil {
		return nil, err
	}

	summary := &ReportSummary{
		GeneratedAt: time.Now().UTC(),
		ByStatus:    byStatus,
		ByDistrict:  byDistrict,
		ByPriority:  byPriority,
	}
	for _, c := range byStatus {
		summary.TotalCount += c.Count
		summary.TotalBudget += c.Budget
	}
	return summary, nil
}

func (s *reportService) Export(ctx context.Context, reportType, format string) (*Export, error) {
	header, rows, err := s.exportRows(ctx, reportType)
	if err != nil {
		return nil, err
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case "excel":
		body, err := renderCSV(header, rows)
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    fmt.Sprintf("%s-report-%s.csv", reportType, stamp),
			ContentType: "text/csv; charset=utf-8",
			Body:        body,
		}, nil
	case "pdf":
		// Printable HTML; the browser's print dialog produces the PDF.
		return &Export{
			Filename:    fmt.Sprintf("%s-report-%s.html", reportType, stamp),
			ContentType: "text/html; charset=utf-8",
			Body:        renderPrintableHTML(reportType, header, rows),
		}, nil
	default:
		return nil, fmt.Errorf("export format must be excel or pdf, got %q: %w", format, domain.ErrValidation)
	}
}

func (s *reportService) exportRows(ctx context.Context, reportType string) ([]string, [][]string, error) {
	switch reportType {
	case "summary":
		summary, err := s.Summary(ctx)
		if err != nil {
			return nil, nil, err
		}
		header := []string{"section", "key", "projects", "total_budget"}
		var rows [][]string
		appendSection := func(section string, counts []repository.StatusCount) {
			for _, c := range counts {
				rows = append(rows, []string{
					section, c.Key, strconv.Itoa(c.Count),
					strconv.FormatFloat(c.Budget, 'f', 2, 64),
				})
			}
		}
		appendSection("status", summary.ByStatus)
		appendSection("district", summary.ByDistrict)
		appendSection("priority", summary.ByPriority)
		return header, rows, nil

	case "monitoring":
		monRows, err := s.monitoring.List(ctx, repository.MonitoringFilter{}, time.Now().UTC())
		if err != nil {
			return nil, nil, err
		}
		header := []string{"code", "name", "status", "priority", "budget", "district", "barangay",
			"progress_pct", "delayed", "engineer", "contractor"}
		var rows [][]string
		for _, m := range monRows {
			progress := ""
			if m.ProgressPct != nil {
				progress = strconv.FormatFloat(*m.ProgressPct, 'f', 1, 64)
			}
			rows = append(rows, []string{
				m.Code, m.Name, string(m.Status), string(m.Priority),
				strconv.FormatFloat(m.Budget, 'f', 2, 64),
				m.District, m.Barangay, progress,
				strconv.FormatBool(m.IsDelayed),
				stringOrEmpty(m.EngineerName), stringOrEmpty(m.ContractorName),
			})
		}
		return header, rows, nil

	default:
		return nil, nil, fmt.Errorf("report type must be summary or monitoring, got %q: %w", reportType, domain.ErrValidation)
	}
}

func renderCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPrintableHTML(title string, header []string, rows [][]string) []byte {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
	buf.WriteString(html.EscapeString(title))
	buf.WriteString(" report</title></head><body><table border=\"1\" cellspacing=\"0\" cellpadding=\"4\"><tr>")
	for _, h := range header {
		buf.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	buf.WriteString("</tr>")
	for _, row := range rows {
		buf.WriteString("<tr>")
		for _, cell := range row {
			buf.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		buf.WriteString("</tr>")
	}
	buf.WriteString("</table></body></html>")
	return buf.Bytes()
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
