package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"forecastlog/pkg/dashboard"
	"forecastlog/pkg/export"
	"forecastlog/pkg/form"
	"forecastlog/pkg/record"
	"forecastlog/pkg/store"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

const (
	appTitle       = "Garage Door Forecast Logger"
	legacyFileBase = "forecast_log"
	dashboardBase  = "dashboard"
	maxFormBytes   = 64 << 10
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"label": columnLabel,
}).ParseFS(templateFS, "templates/*.html"))

// Server renders the entry form and dashboard on top of a RecordStore.
type Server struct {
	store      store.RecordStore
	dashboard  *dashboard.Aggregator
	recentRows int
}

func NewServer(st store.RecordStore, recentRows int) *Server {
	return &Server{
		store:      st,
		dashboard:  dashboard.New(st),
		recentRows: recentRows,
	}
}

func (s *Server) getIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := s.newFormPage(form.ParseMode(q.Get("mode")))

	tabs, err := s.store.ListPartitions(r.Context())
	if err != nil {
		page.Messages = append(page.Messages, messageFor("Could not load project tabs", err))
	}
	sel := form.NewSelector(tabs, page.Mode)
	page.Mode, page.Forced, page.Tabs = sel.Mode, sel.Forced, sel.Available

	if saved := strings.TrimSpace(q.Get("saved")); saved != "" {
		page.Messages = append(page.Messages, message{
			Level: levelSuccess,
			Text:  fmt.Sprintf("Saved to project tab %q.", saved),
		})
	}

	active := sel.Choose(q.Get("tab"))
	if _, ok := active.Name(); !ok {
		active = sel.Default()
	}
	if name, ok := active.Name(); ok {
		page.Values.ExistingTab = name
		s.loadRecent(r, &page, name)
	}
	s.render(w, http.StatusOK, "form.html", page)
}

// postEntry validates before touching the store. A rejected entry is
// re-rendered from the posted values alone.
func (s *Server) postEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	values := entryValues{
		ExistingTab:         r.PostForm.Get("existingTab"),
		NewTab:              r.PostForm.Get("newTab"),
		ProjectName:         r.PostForm.Get("projectName"),
		LotNumber:           r.PostForm.Get("lotNumber"),
		ExpectedInstallDate: r.PostForm.Get("expectedInstallDate"),
		StatusUpdate:        r.PostForm.Get("statusUpdate"),
	}
	sel := form.NewSelector(r.PostForm["knownTab"], form.ParseMode(r.PostForm.Get("mode")))
	tab := sel.Resolve(values.ExistingTab, values.NewTab)

	rec, errs := form.Validate(tab, form.Input{
		ProjectName:         values.ProjectName,
		LotNumber:           values.LotNumber,
		ExpectedInstallDate: values.ExpectedInstallDate,
		StatusUpdate:        values.StatusUpdate,
	})

	page := s.newFormPage(sel.Mode)
	page.Forced, page.Tabs, page.Values = sel.Forced, sel.Available, values
	if errs != nil {
		log.WithField("tab", tab.String()).Debugf("entry rejected: %v", errs)
		page.Errors = errs
		page.Messages = append(page.Messages, message{Level: levelError, Text: "Please fix the highlighted fields."})
		s.render(w, http.StatusUnprocessableEntity, "form.html", page)
		return
	}

	if err := s.store.AppendRecord(r.Context(), rec); err != nil {
		page.Messages = append(page.Messages, messageFor("Write failed", err))
		s.render(w, http.StatusBadGateway, "form.html", page)
		return
	}
	log.WithFields(log.Fields{"tab": rec.ProjectTab, "lot": rec.LotNumber}).Info("entry saved")

	target := fmt.Sprintf("/?tab=%s&saved=%s", url.QueryEscape(rec.ProjectTab), url.QueryEscape(rec.ProjectTab))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) getTabExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	// chi matches on RawPath when it is set, leaving the parameter escaped.
	tab := chi.URLParam(r, "tab")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(tab); err == nil {
			tab = unescaped
		}
	}
	table, err := s.store.FetchPartitionRecords(r.Context(), tab)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.sendExport(w, table, format, tab)
}

func (s *Server) getRecordsExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	table, err := s.store.FetchRecords(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.sendExport(w, table, format, legacyFileBase)
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	page := dashboardPage{Title: appTitle}
	view, err := s.dashboard.Load(r.Context())
	if err != nil {
		page.Messages = append(page.Messages, messageFor("Could not load the dashboard", err))
	}
	page.Table, page.FetchedAt = view.Table, view.FetchedAt
	s.render(w, http.StatusOK, "dashboard.html", page)
}

// postDashboardRefresh only triggers the rebuild; the table shown is the
// last one loaded.
func (s *Server) postDashboardRefresh(w http.ResponseWriter, r *http.Request) {
	page := dashboardPage{Title: appTitle}
	status := http.StatusOK
	if err := s.dashboard.Refresh(r.Context()); err != nil {
		page.Messages = append(page.Messages, messageFor("Dashboard refresh failed", err))
		status = http.StatusBadGateway
	} else {
		page.Messages = append(page.Messages, message{
			Level: levelSuccess,
			Text:  "Dashboard refresh requested. Load the dashboard to see the new totals.",
		})
	}
	view := s.dashboard.Latest()
	page.Table, page.FetchedAt = view.Table, view.FetchedAt
	s.render(w, status, "dashboard.html", page)
}

func (s *Server) getDashboardExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.sendExport(w, s.dashboard.Latest().Table, format, dashboardBase)
}

func (s *Server) newFormPage(mode form.Mode) formPage {
	return formPage{
		Title:  appTitle,
		Mode:   mode,
		Values: entryValues{ExpectedInstallDate: record.Today()},
		Recent: record.EmptyRecordTable(),
	}
}

func (s *Server) loadRecent(r *http.Request, page *formPage, tab string) {
	page.ActiveTab = tab
	table, err := s.store.FetchPartitionRecords(r.Context(), tab)
	if err != nil {
		page.Messages = append(page.Messages, messageFor("Viewer error", err))
	} else {
		page.RecentLoaded = true
	}
	page.Recent = table.Tail(s.recentRows)
}

func (s *Server) sendExport(w http.ResponseWriter, table record.Table, format export.Format, base string) {
	var buf bytes.Buffer
	if err := export.Write(&buf, table, format, base); err != nil {
		log.Errorf("export %s failed: %v", base, err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(base, format)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Errorf("rendering %s: %v", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
