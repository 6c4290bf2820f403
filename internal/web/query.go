package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Joseda-hg/mindtask/internal/db"
	"github.com/Joseda-hg/mindtask/internal/model"
	"github.com/Joseda-hg/mindtask/internal/query"
)

const dateLayout = "2006-01-02"

// Query parameters that never name a category.
var reservedParams = map[string]struct{}{
	"q":     {},
	"sort":  {},
	"dir":   {},
	"view":  {},
	"group": {},
}

type listResponse[R any] struct {
	Total       int                       `json:"total"`
	Matched     int                       `json:"matched"`
	Items       []R                       `json:"items"`
	Counts      map[string]map[string]int `json:"counts"`
	Diagnostics []string                  `json:"diagnostics,omitempty"`
}

type schemaInfo interface {
	HasCategory(name string) bool
	HasRange(name string) bool
	HasDateField(name string) bool
}

// collection ties a record type to its engine and loader.
type collection[R any] struct {
	scope  model.Scope
	engine func(opts ...query.Option) *query.Engine[R]
	load   func(ctx context.Context) ([]R, error)
}

type badRequestError struct {
	err error
}

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return badRequestError{err: fmt.Errorf(format, args...)}
}

// runQuery resolves the request into a Spec and runs it, reusing a cached
// result when an identical Spec ran on the same day.
func runQuery[R any](s *Server, r *http.Request, c collection[R]) (listResponse[R], query.Spec, error) {
	now := s.now()
	var diagnostics []string
	engine := c.engine(
		query.WithLogger(s.logger.Named("query")),
		query.WithDiagnostics(func(d query.Diagnostic) {
			diagnostics = append(diagnostics, d.String())
		}),
	)

	spec, err := s.specFromRequest(r, c.scope, engine, now)
	if err != nil {
		return listResponse[R]{}, query.Spec{}, err
	}

	key := cacheKey(c.scope, spec, s.store.Version())
	if s.cache != nil && key != "" {
		if cached, ok := s.cache.Get(key); ok {
			if resp, ok := cached.(listResponse[R]); ok {
				return resp, spec, nil
			}
		}
	}

	items, err := c.load(r.Context())
	if err != nil {
		return listResponse[R]{}, query.Spec{}, err
	}

	result := engine.Run(items, spec)
	resp := listResponse[R]{
		Total:       result.Total,
		Matched:     len(result.Records),
		Items:       result.Records,
		Counts:      result.Counts,
		Diagnostics: diagnostics,
	}
	if s.cache != nil && key != "" {
		s.cache.SetDefault(key, resp)
	}
	return resp, spec, nil
}

func (s *Server) specFromRequest(r *http.Request, scope model.Scope, info schemaInfo, now time.Time) (query.Spec, error) {
	params := r.URL.Query()

	spec := query.Spec{}
	if name := strings.TrimSpace(params.Get("view")); name != "" {
		view, err := s.store.GetViewByName(r.Context(), scope, name)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return query.Spec{}, fmt.Errorf("view %q: %w", name, db.ErrNotFound)
			}
			return query.Spec{}, err
		}
		spec = view.Spec.Clone()
	}
	spec.Now = now

	if params.Has("q") {
		spec.Query = params.Get("q")
	}
	if params.Has("sort") {
		spec.Sort = strings.TrimSpace(params.Get("sort"))
	}
	if params.Has("dir") {
		raw := params.Get("dir")
		if dir, ok := query.ParseDirection(raw); ok {
			spec.Direction = dir
		} else {
			// The engine reports the bad value and falls back to the key's default.
			spec.Direction = query.Direction(raw)
		}
	}

	for name, values := range params {
		if _, ok := reservedParams[name]; ok {
			continue
		}
		if err := applyParam(&spec, info, name, values, now.Location()); err != nil {
			return query.Spec{}, err
		}
	}

	return spec, nil
}

func applyParam(spec *query.Spec, info schemaInfo, name string, values []string, loc *time.Location) error {
	value := strings.TrimSpace(lastValue(values))

	if base, ok := strings.CutSuffix(name, "_min"); ok && info.HasRange(base) {
		return setRangeBound(spec, base, value, func(r *query.Range, v *float64) { r.Min = v })
	}
	if base, ok := strings.CutSuffix(name, "_max"); ok && info.HasRange(base) {
		return setRangeBound(spec, base, value, func(r *query.Range, v *float64) { r.Max = v })
	}
	if base, ok := strings.CutSuffix(name, "_from"); ok && info.HasDateField(base) {
		return setDateBound(spec, base, value, loc, func(r *query.DateRange, t *time.Time) { r.From = t })
	}
	if base, ok := strings.CutSuffix(name, "_to"); ok && info.HasDateField(base) {
		return setDateBound(spec, base, value, loc, func(r *query.DateRange, t *time.Time) { r.To = t })
	}

	// Anything else is a category; unknown names reach the engine, which
	// ignores and reports them.
	selected := splitCSV(values)
	if len(selected) == 0 {
		delete(spec.Filters, name)
		return nil
	}
	if spec.Filters == nil {
		spec.Filters = make(map[string][]string)
	}
	spec.Filters[name] = selected
	return nil
}

func setRangeBound(spec *query.Spec, name, value string, set func(*query.Range, *float64)) error {
	if spec.Ranges == nil {
		spec.Ranges = make(map[string]query.Range)
	}
	bounds := spec.Ranges[name]
	if value == "" {
		set(&bounds, nil)
	} else {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return badRequest("%s: invalid number %q", name, value)
		}
		set(&bounds, &parsed)
	}
	if bounds.IsZero() {
		delete(spec.Ranges, name)
		return nil
	}
	spec.Ranges[name] = bounds
	return nil
}

func setDateBound(spec *query.Spec, name, value string, loc *time.Location, set func(*query.DateRange, *time.Time)) error {
	if spec.Dates == nil {
		spec.Dates = make(map[string]query.DateRange)
	}
	bounds := spec.Dates[name]
	if value == "" {
		set(&bounds, nil)
	} else {
		parsed, err := time.ParseInLocation(dateLayout, value, loc)
		if err != nil {
			return badRequest("%s: invalid date %q, want YYYY-MM-DD", name, value)
		}
		set(&bounds, &parsed)
	}
	if bounds.IsZero() {
		delete(spec.Dates, name)
		return nil
	}
	spec.Dates[name] = bounds
	return nil
}

func splitCSV(values []string) []string {
	var result []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}
	return result
}

func lastValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

// cacheKey covers everything a run depends on: the Spec, the calendar day it
// is anchored to and the store version the records were read at. An empty
// key means the result must not be cached.
func cacheKey(scope model.Scope, spec query.Spec, version int64) string {
	payload, err := json.Marshal(spec)
	if err != nil {
		return ""
	}
	day := spec.Now.Format(dateLayout) + "@" + spec.Now.Location().String()
	return string(scope) + "|" + strconv.FormatInt(version, 10) + "|" + day + "|" + string(payload)
}

func (s *Server) recordSearch(r *http.Request, scope model.Scope, spec query.Spec) {
	if strings.TrimSpace(spec.Query) == "" {
		return
	}
	if err := s.store.RecordSearch(r.Context(), scope, spec.Query); err != nil {
		s.logger.Warn("record search failed", zap.String("scope", string(scope)), zap.Error(err))
	}
}

func (s *Server) writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	var bad badRequestError
	if errors.As(err, &bad) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeStoreError(w, r, err)
}

func queryValues(values url.Values, name string) string {
	return strings.TrimSpace(values.Get(name))
}
