package web

import (
	"net/http"

	"github.com/Joseda-hg/mindtask/internal/db"
	"github.com/Joseda-hg/mindtask/internal/model"
	"github.com/Joseda-hg/mindtask/internal/records"
)

type noteRequest struct {
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Tags       []string `json:"tags"`
	Emotion    string   `json:"emotion"`
	Intensity  *float64 `json:"intensity"`
	Bookmarked bool     `json:"bookmarked"`
	Archived   bool     `json:"archived"`
}

func (req noteRequest) input() db.NoteInput {
	return db.NoteInput{
		Title:      req.Title,
		Body:       req.Body,
		Tags:       req.Tags,
		Emotion:    req.Emotion,
		Intensity:  req.Intensity,
		Bookmarked: req.Bookmarked,
		Archived:   req.Archived,
	}
}

func (s *Server) notes() collection[model.Note] {
	return collection[model.Note]{scope: model.ScopeNotes, engine: records.Notes, load: s.store.ListNotes}
}

func (s *Server) listNotesHandler(w http.ResponseWriter, r *http.Request) {
	resp, spec, err := runQuery(s, r, s.notes())
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	s.recordSearch(r, model.ScopeNotes, spec)
	writeJSON(w, resp)
}

func (s *Server) createNoteHandler(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	note, err := s.store.CreateNote(r.Context(), req.input())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.invalidate()
	writeJSONStatus(w, http.StatusCreated, note)
}

func (s *Server) getNoteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	note, err := s.store.GetNote(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, note)
}

func (s *Server) updateNoteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	note, err := s.store.UpdateNote(r.Context(), id, req.input())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.invalidate()
	writeJSON(w, note)
}

func (s *Server) deleteNoteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	if err := s.store.DeleteNote(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.invalidate()
	w.WriteHeader(http.StatusNoContent)
}
