package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Joseda-hg/mindtask/internal/db"
	"github.com/Joseda-hg/mindtask/internal/model"
	"github.com/Joseda-hg/mindtask/internal/records"
)

type subtaskRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type taskRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Priority    string           `json:"priority"`
	Status      string           `json:"status"`
	Emotion     string           `json:"emotion"`
	DueAt       string           `json:"due_at"`
	Subtasks    []subtaskRequest `json:"subtasks"`
}

// input accepts due dates as RFC 3339 timestamps or plain YYYY-MM-DD days,
// the latter read in loc.
func (req taskRequest) input(loc *time.Location) (db.TaskInput, error) {
	input := db.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      req.Status,
		Emotion:     req.Emotion,
	}

	if due := strings.TrimSpace(req.DueAt); due != "" {
		parsed, err := time.Parse(time.RFC3339, due)
		if err != nil {
			parsed, err = time.ParseInLocation(dateLayout, due, loc)
			if err != nil {
				return db.TaskInput{}, badRequest("due_at: invalid date %q", due)
			}
		}
		input.DueAt = &parsed
	}

	for _, subtask := range req.Subtasks {
		input.Subtasks = append(input.Subtasks, db.SubtaskInput{Title: subtask.Title, Completed: subtask.Completed})
	}
	return input, nil
}

type boardColumn struct {
	Value string       `json:"value"`
	Count int          `json:"count"`
	Items []model.Task `json:"items"`
}

type boardResponse struct {
	Group   string        `json:"group"`
	Total   int           `json:"total"`
	Columns []boardColumn `json:"columns"`
}

func (s *Server) tasks() collection[model.Task] {
	return collection[model.Task]{scope: model.ScopeTasks, engine: records.Tasks, load: s.store.ListTasks}
}

func (s *Server) listTasksHandler(w http.ResponseWriter, r *http.Request) {
	resp, spec, err := runQuery(s, r, s.tasks())
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	s.recordSearch(r, model.ScopeTasks, spec)
	writeJSON(w, resp)
}

// taskBoardHandler runs the task query and splits the result into columns,
// status columns by default.
func (s *Server) taskBoardHandler(w http.ResponseWriter, r *http.Request) {
	group := queryValues(r.URL.Query(), "group")
	if group == "" {
		group = records.TaskStatus
	}

	engine := records.Tasks()
	if !engine.HasCategory(group) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown group %q", group))
		return
	}

	resp, spec, err := runQuery(s, r, s.tasks())
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}

	board := boardResponse{Group: group, Total: resp.Matched, Columns: []boardColumn{}}
	for _, g := range engine.Group(resp.Items, group, spec.Now) {
		items := g.Records
		if items == nil {
			items = []model.Task{}
		}
		board.Columns = append(board.Columns, boardColumn{Value: g.Value, Count: len(items), Items: items})
	}
	writeJSON(w, board)
}

func (s *Server) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	input, err := req.input(s.now().Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	task, err := s.store.CreateTask(r.Context(), input)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.invalidate()
	writeJSONStatus(w, http.StatusCreated, task)
}

func (s *Server) getTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	task, err := s.store.GetTask(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	history, err := s.store.ListHistory(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	payload := struct {
		Task    model.Task           `json:"task"`
		History []model.HistoryEntry `json:"history"`
	}{Task: task, History: history}

	writeJSON(w, payload)
}

func (s *Server) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	input, err := req.input(s.now().Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	task, err := s.store.UpdateTask(r.Context(), id, input)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.invalidate()
	writeJSON(w, task)
}

func (s *Server) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	if err := s.store.DeleteTask(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateSubtaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	subtaskID, err := parseID(r.PathValue("subtaskID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	var req struct {
		Completed bool `json:"completed"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	task, err := s.store.SetSubtaskCompleted(r.Context(), id, subtaskID, req.Completed)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.invalidate()
	writeJSON(w, task)
}
