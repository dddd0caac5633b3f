package http

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/store"
)

// dashboardTimeout bounds the snapshot read behind a page render.
const dashboardTimeout = 7 * time.Second

var templateFuncs = template.FuncMap{
	"money": func(m core.Money) string { return m.String() },
	"statusClass": func(s aggregate.Status) string {
		return "status--" + string(s)
	},
	"heatClass": func(level int) string {
		return "heat-" + string(rune('0'+level))
	},
	// barWidth scales a ratio to a 0..100 progress width.
	"barWidth": func(r aggregate.Ratio) int {
		p, ok := r.Percent()
		switch {
		case !ok:
			return 100
		case p > 100:
			return 100
		case p < 0:
			return 0
		default:
			return int(p + 0.5)
		}
	},
}

// handleDashboard renders totals, category breakdowns, budget status and the
// monthly series, rebuilt from a fresh snapshot on every request.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	data := struct {
		View      aggregate.View
		Generated string
	}{
		View:      aggregate.Build(snap),
		Generated: time.Now().Format("2006-01-02 15:04"),
	}
	s.render(w, r, "dashboard_page", data)
}

// handleCalendar renders the daily heatmap for ?month=YYYY-MM.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	month, ok := ParseMonthParam(r.URL.Query(), now)
	if !ok {
		s.logger.WarnContext(r.Context(), "Invalid month parameter",
			"month", r.URL.Query().Get("month"), "corrected_to", month)
	}

	snap, loaded := s.loadSnapshot(w, r)
	if !loaded {
		return
	}

	first, _ := time.Parse(monthLayout, month)
	data := struct {
		Calendar aggregate.CalendarMonth
		Prev     string
		Next     string
		Title    string
	}{
		Calendar: aggregate.Calendar(snap.Incomes, snap.Expenses, month),
		Prev:     first.AddDate(0, -1, 0).Format(monthLayout),
		Next:     first.AddDate(0, 1, 0).Format(monthLayout),
		Title:    first.Format("January 2006"),
	}
	s.render(w, r, "calendar_page", data)
}

func (s *Server) loadSnapshot(w http.ResponseWriter, r *http.Request) (aggregate.Snapshot, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	snap, err := store.LoadSnapshot(ctx, s.store)
	if err != nil {
		applog.NewStructuredLogger(s.logger.WithComponent(applog.ComponentDashboard)).
			LogError(r.Context(), "Failed to load snapshot", err, applog.ErrorTypeInternal, applog.OpRender, nil)
		http.Error(w, "failed to load data", http.StatusInternalServerError)
		return snap, false
	}
	return snap, true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			"template", name)
	}
}
