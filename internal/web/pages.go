package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Joseda-hg/mindtask/internal/model"
	"github.com/Joseda-hg/mindtask/internal/query"
	"github.com/Joseda-hg/mindtask/internal/records"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.tmpl"))

type pageRow struct {
	Title  string
	Detail string
	When   string
}

type pageOption struct {
	Value    string
	Count    int
	Selected bool
	Link     string
}

type pageCategory struct {
	Name    string
	Options []pageOption
}

type pageData struct {
	Scope      model.Scope
	Query      string
	Sort       string
	Total      int
	Matched    int
	Categories []pageCategory
	Rows       []pageRow
}

func (s *Server) tasksPageHandler(w http.ResponseWriter, r *http.Request) {
	resp, spec, err := runQuery(s, r, s.tasks())
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}

	engine := records.Tasks()
	data := newPageData(r, model.ScopeTasks, spec, engine.Categories(), engine.Options, resp.Counts, engine.DefaultSort())
	data.Total, data.Matched = resp.Total, resp.Matched
	for _, task := range resp.Items {
		when := "no due date"
		if task.DueAt != nil {
			when = "due " + humanize.RelTime(*task.DueAt, spec.Now, "ago", "from now")
		}
		data.Rows = append(data.Rows, pageRow{
			Title:  task.Title,
			Detail: joinNonEmpty(" · ", string(task.Status), string(task.Priority), task.Category),
			When:   when,
		})
	}
	s.renderPage(w, data)
}

func (s *Server) notesPageHandler(w http.ResponseWriter, r *http.Request) {
	resp, spec, err := runQuery(s, r, s.notes())
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}

	engine := records.Notes()
	data := newPageData(r, model.ScopeNotes, spec, engine.Categories(), engine.Options, resp.Counts, engine.DefaultSort())
	data.Total, data.Matched = resp.Total, resp.Matched
	for _, note := range resp.Items {
		data.Rows = append(data.Rows, pageRow{
			Title:  note.Title,
			Detail: joinNonEmpty(" · ", note.Emotion, strings.Join(note.Tags, ", ")),
			When:   humanize.RelTime(note.CreatedAt, spec.Now, "ago", "from now"),
		})
	}
	s.renderPage(w, data)
}

func (s *Server) renderPage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("render page failed", zap.Error(err))
	}
}

func newPageData(r *http.Request, scope model.Scope, spec query.Spec, categories []string, options func(string) []string, counts map[string]map[string]int, defaultSort string) pageData {
	data := pageData{Scope: scope, Query: spec.Query, Sort: spec.Sort}
	if data.Sort == "" {
		data.Sort = defaultSort
	}

	for _, category := range categories {
		values := query.OrderedValues(options(category), counts[category])
		entry := pageCategory{Name: category}
		for _, value := range values {
			entry.Options = append(entry.Options, pageOption{
				Value:    value,
				Count:    counts[category][value],
				Selected: spec.Selected(category, value),
				Link:     toggleLink(r, category, spec.Toggle(category, value).Filters[category]),
			})
		}
		data.Categories = append(data.Categories, entry)
	}
	return data
}

func toggleLink(r *http.Request, category string, selected []string) string {
	params := r.URL.Query()
	if len(selected) == 0 {
		params.Set(category, "")
	} else {
		params.Set(category, strings.Join(selected, ","))
	}
	return r.URL.Path + "?" + params.Encode()
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
