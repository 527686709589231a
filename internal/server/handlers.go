package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rcliao/studylog/internal/model"
	"github.com/rcliao/studylog/internal/store"
	"go.uber.org/zap"
)

const (
	msgImported      = "Data imported successfully!"
	msgInvalidImport = "Invalid file format. Please upload a valid JSON file."
	msgImportFailed  = "Failed to save imported data."
	msgRequired      = "Text and translation are required."
)

// --- Page Handlers ---

type chartBar struct {
	model.ChartDataPoint
	Percent int
}

// formValues echoes a rejected entry form back to the page.
type formValues struct {
	Text        string
	Translation string
	Type        string
	Notes       string
}

type pageData struct {
	Form     formValues
	Entries  []model.StudyEntry
	Total    int
	Stats    model.Stats
	Chart    []chartBar
	Query    string
	Category string
	Types    []model.EntryType
	Message  string
	Error    string
	Suggest  bool
}

func (s *Server) pageData(r *http.Request) pageData {
	q := r.URL.Query().Get("q")
	category := r.URL.Query().Get("type")
	if !model.ValidCategory(category) {
		category = model.CategoryAll
	}

	now := s.now()
	points := s.store.Activity(s.windowDays, now)
	maxCount := 1
	for _, p := range points {
		if p.Count > maxCount {
			maxCount = p.Count
		}
	}
	bars := make([]chartBar, len(points))
	for i, p := range points {
		bars[i] = chartBar{ChartDataPoint: p, Percent: p.Count * 100 / maxCount}
	}

	return pageData{
		Entries:  s.store.View(q, category),
		Total:    s.store.Len(),
		Stats:    s.store.Stats(now),
		Chart:    bars,
		Query:    q,
		Category: category,
		Types:    model.ValidTypes,
		Suggest:  s.suggester.Enabled(),
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	data := s.pageData(r)
	data.Message = r.URL.Query().Get("msg")
	data.Error = r.URL.Query().Get("error")
	s.render(w, http.StatusOK, data)
}

func (s *Server) handleFormAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form := formValues{
		Text:        strings.TrimSpace(r.PostFormValue("text")),
		Translation: strings.TrimSpace(r.PostFormValue("translation")),
		Type:        r.PostFormValue("type"),
		Notes:       strings.TrimSpace(r.PostFormValue("notes")),
	}
	rejectForm := func(status int, msg string) {
		data := s.pageData(r)
		data.Form = form
		data.Error = msg
		s.render(w, status, data)
	}

	if form.Text == "" || form.Translation == "" {
		rejectForm(http.StatusBadRequest, msgRequired)
		return
	}
	typ, ok := model.ParseType(form.Type)
	if !ok {
		rejectForm(http.StatusBadRequest, fmt.Sprintf("Unknown entry type %q.", form.Type))
		return
	}

	e := s.factory.New(form.Text, form.Translation, typ, form.Notes)
	if err := s.store.Add(r.Context(), e); err != nil {
		s.logger.Error("add entry", zap.Error(err))
		rejectForm(http.StatusInternalServerError, "Failed to save the entry.")
		return
	}
	s.metrics.entriesAdded.Inc()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleFormDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	status, msg := s.removeEntry(r, r.PostFormValue("confirm") == "true")
	if status != http.StatusOK {
		http.Redirect(w, r, "/?error="+url.QueryEscape(msg), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleFormImport(w http.ResponseWriter, r *http.Request) {
	data, err := readImportBody(w, r)
	if err != nil {
		s.metrics.imports.WithLabelValues("rejected").Inc()
		http.Redirect(w, r, "/?error="+url.QueryEscape(msgInvalidImport), http.StatusSeeOther)
		return
	}
	if _, err := s.importData(r, data); err != nil {
		msg := msgImportFailed
		if errors.Is(err, store.ErrInvalidImport) || errors.Is(err, store.ErrNotArray) {
			msg = msgInvalidImport
		}
		http.Redirect(w, r, "/?error="+url.QueryEscape(msg), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?msg="+url.QueryEscape(msgImported), http.StatusSeeOther)
}

// --- API Handlers ---

type createEntryRequest struct {
	Text        string `json:"text"`
	Translation string `json:"translation"`
	Type        string `json:"type"`
	Notes       string `json:"notes"`
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("type")
	if category == "" {
		category = model.CategoryAll
	}
	if !model.ValidCategory(category) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown type %q", category))
		return
	}
	writeJSON(w, http.StatusOK, s.store.View(r.URL.Query().Get("q"), category))
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadSize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text := strings.TrimSpace(req.Text)
	translation := strings.TrimSpace(req.Translation)
	if text == "" || translation == "" {
		writeError(w, http.StatusBadRequest, msgRequired)
		return
	}
	if req.Type == "" {
		req.Type = string(model.TypeWord)
	}
	typ, ok := model.ParseType(req.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown type %q", req.Type))
		return
	}

	e := s.factory.New(text, translation, typ, strings.TrimSpace(req.Notes))
	if err := s.store.Add(r.Context(), e); err != nil {
		s.logger.Error("add entry", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save entry")
		return
	}
	s.metrics.entriesAdded.Inc()
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	status, msg := s.removeEntry(r, r.URL.Query().Get("confirm") == "true")
	if status != http.StatusOK {
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// removeEntry deletes the {id} entry and maps the outcome to a status and a
// user-facing message.
func (s *Server) removeEntry(r *http.Request, confirmed bool) (int, string) {
	id := chi.URLParam(r, "id")
	removed, err := s.store.Remove(r.Context(), id, store.ConfirmFunc(func(string) bool { return confirmed }))
	switch {
	case errors.Is(err, store.ErrNotConfirmed):
		return http.StatusPreconditionRequired, "Deletion was not confirmed (confirm=true)."
	case err != nil:
		s.logger.Error("remove entry", zap.String("id", id), zap.Error(err))
		return http.StatusInternalServerError, "Failed to delete the entry."
	case !removed:
		return http.StatusNotFound, "Entry not found."
	}
	s.metrics.entriesRemoved.Inc()
	return http.StatusOK, ""
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	days := s.windowDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > store.MaxWindowDays {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", store.MaxWindowDays))
			return
		}
		days = n
	}
	writeJSON(w, http.StatusOK, s.store.Activity(days, s.now()))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats(s.now()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.Export()
	if err != nil {
		s.logger.Error("export", zap.Error(err))
		http.Error(w, "Failed to export", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+store.ExportFilename)
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := readImportBody(w, r)
	if err != nil {
		s.metrics.imports.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, msgInvalidImport)
		return
	}
	n, err := s.importData(r, data)
	if err != nil {
		if errors.Is(err, store.ErrInvalidImport) || errors.Is(err, store.ErrNotArray) {
			writeError(w, http.StatusBadRequest, msgInvalidImport)
			return
		}
		writeError(w, http.StatusInternalServerError, msgImportFailed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"message":  msgImported,
		"imported": n,
	})
}

func (s *Server) importData(r *http.Request, data []byte) (int, error) {
	n, err := s.store.Import(r.Context(), data)
	switch {
	case errors.Is(err, store.ErrInvalidImport), errors.Is(err, store.ErrNotArray):
		s.metrics.imports.WithLabelValues("rejected").Inc()
		s.logger.Warn("import rejected", zap.Error(err))
		return 0, err
	case err != nil:
		s.metrics.imports.WithLabelValues("error").Inc()
		s.logger.Error("import", zap.Error(err))
		return 0, err
	}
	s.metrics.imports.WithLabelValues("ok").Inc()
	s.logger.Info("imported entries", zap.Int("count", n))
	return n, nil
}

type suggestRequest struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	release, ok := s.gate.TryAcquire()
	if !ok {
		s.metrics.suggestions.WithLabelValues("busy").Inc()
		writeError(w, http.StatusConflict, "a suggestion is already in progress")
		return
	}
	defer release()

	var req suggestRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadSize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type == "" {
		req.Type = string(model.TypeWord)
	}
	typ, ok := model.ParseType(req.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown type %q", req.Type))
		return
	}

	sg := s.suggester.Suggest(r.Context(), req.Text, typ)
	outcome := "ok"
	if sg == nil {
		outcome = "none"
	}
	s.metrics.suggestions.WithLabelValues(outcome).Inc()
	writeJSON(w, http.StatusOK, map[string]*model.Suggestion{"suggestion": sg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Helpers ---

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		s.logger.Error("template error", zap.Error(err))
	}
}

// readImportBody accepts either a multipart upload in the "file" field or a
// raw JSON body.
func readImportBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("no file provided: %w", err)
	}
	defer file.Close()
	return io.ReadAll(file)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
