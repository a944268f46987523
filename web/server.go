// Package web serves the depletion session as a localhost JSON API. It has no
// auth or CSRF protection in this mode.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"depletions/config"
	"depletions/depletion"
	"depletions/importer"
	"depletions/output"
	"depletions/session"
	"depletions/submitter"
)

// WorkingListStore persists the session after every change.
type WorkingListStore interface {
	SaveWorkingList(accountID string, records []depletion.Record) error
}

type Server struct {
	session *session.Session
	sink    submitter.Sink
	store   WorkingListStore
	cfg     config.Config
	mux     *http.ServeMux
}

type validateAccountRequest struct {
	TaxID string `json:"taxId"`
	Email string `json:"email"`
}

type accountResponse struct {
	AccountID string `json:"accountId"`
}

type typesResponse struct {
	Types []string `json:"types"`
}

type listResponse struct {
	AccountID  string             `json:"accountId"`
	Depletions []depletion.Record `json:"depletions"`
}

type editRequest struct {
	Changes []depletion.Change `json:"changes"`
}

type importResponse struct {
	RowsRead     int                         `json:"rowsRead"`
	RowsAccepted int                         `json:"rowsAccepted"`
	RowsRejected int                         `json:"rowsRejected"`
	Messages     []string                    `json:"messages"`
	Errors       []depletion.ValidationError `json:"errors"`
	Total        int                         `json:"total"`
}

type submitResponse struct {
	Submitted int `json:"submitted"`
	Batches   int `json:"batches"`
	Remaining int `json:"remaining"`
}

type errorResponse struct {
	Error    string   `json:"error"`
	Field    string   `json:"field,omitempty"`
	Messages []string `json:"messages,omitempty"`
}

// NewServer routes the session API. store may be nil when nothing should be
// persisted.
func NewServer(sess *session.Session, sink submitter.Sink, store WorkingListStore, cfg config.Config, logger zerolog.Logger) http.Handler {
	server := &Server{
		session: sess,
		sink:    sink,
		store:   store,
		cfg:     cfg,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/account/validate", server.handleAPIAccountValidate)
	mux.HandleFunc("GET /api/types", server.handleAPITypes)
	mux.HandleFunc("GET /api/depletions", server.handleAPIList)
	mux.HandleFunc("POST /api/depletions", server.handleAPIAdd)
	mux.HandleFunc("PATCH /api/depletions/{token}", server.handleAPIEdit)
	mux.HandleFunc("DELETE /api/depletions/{token}", server.handleAPIRemove)
	mux.HandleFunc("POST /api/import", server.handleAPIImport)
	mux.HandleFunc("POST /api/submit", server.handleAPISubmit)
	mux.HandleFunc("GET /api/template", server.handleAPITemplate)
	mux.HandleFunc("GET /api/export", server.handleAPIExport)
	server.mux = mux

	return requestLogger(logger, server)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleAPIAccountValidate(w http.ResponseWriter, r *http.Request) {
	var body validateAccountRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	accountID, err := s.session.ValidateAccount(r.Context(), body.TaxID, body.Email)
	if err != nil {
		writeError(w, sessionErrorStatus(err), err)
		return
	}
	s.persist(r)
	writeJSON(w, http.StatusOK, accountResponse{AccountID: accountID})
}

func (s *Server) handleAPITypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.session.MovementTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, typesResponse{Types: types})
}

func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listResponse{
		AccountID:  s.session.AccountID(),
		Depletions: s.session.Records(),
	})
}

func (s *Server) handleAPIAdd(w http.ResponseWriter, r *http.Request) {
	var draft session.Draft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	record, err := s.session.Add(r.Context(), draft)
	if err != nil {
		writeError(w, sessionErrorStatus(err), err)
		return
	}
	s.persist(r)
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleAPIEdit(w http.ResponseWriter, r *http.Request) {
	var body editRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(body.Changes) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("no changes given"))
		return
	}

	record, err := s.session.Edit(r.PathValue("token"), body.Changes...)
	if err != nil {
		writeError(w, sessionErrorStatus(err), err)
		return
	}
	s.persist(r)
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleAPIRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Remove(r.PathValue("token")); err != nil {
		writeError(w, sessionErrorStatus(err), err)
		return
	}
	s.persist(r)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPIImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("missing file upload"))
		return
	}
	defer file.Close()

	format, err := importer.InferFormat(header.Filename, r.FormValue("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	scanner, err := importer.ScannerForFormat(format, file, importer.ParseOptions{Delimiter: s.cfg.Import.DelimiterRune()})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.session.Import(r.Context(), scanner)
	if err != nil {
		var batchErr *importer.BatchError
		if errors.As(err, &batchErr) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: batchErr.Error(), Messages: batchErr.Messages()})
			return
		}
		writeError(w, sessionErrorStatus(err), err)
		return
	}
	s.persist(r)

	writeJSON(w, http.StatusOK, importResponse{
		RowsRead:     result.RowsRead,
		RowsAccepted: result.RowsAccepted,
		RowsRejected: result.RowsRejected,
		Messages:     result.Messages(),
		Errors:       result.Errors,
		Total:        s.session.Len(),
	})
}

func (s *Server) handleAPISubmit(w http.ResponseWriter, r *http.Request) {
	report, err := s.session.Submit(r.Context(), s.sink)
	if report.Submitted > 0 {
		s.persist(r)
	}
	if err != nil {
		writeError(w, sessionErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Submitted: report.Submitted,
		Batches:   report.Batches,
		Remaining: s.session.Len(),
	})
}

func (s *Server) handleAPITemplate(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	types, err := s.session.MovementTypes(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("template without movement types")
	}

	contentType, extension := output.TemplateContentType(format)
	var buf strings.Builder
	if err := output.WriteTemplate(&buf, format, output.Template{Columns: s.cfg.Import.Columns, AllowedTypes: types}); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeDownload(w, contentType, "depletions-template"+extension, buf.String())
}

func (s *Server) handleAPIExport(w http.ResponseWriter, r *http.Request) {
	writer, err := output.WriterForFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var buf strings.Builder
	if err := writer.Write(&buf, s.session.Records()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeDownload(w, writer.ContentType(), "depletions"+writer.Extension(), buf.String())
}

func (s *Server) persist(r *http.Request) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveWorkingList(s.session.AccountID(), s.session.Records()); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("persist working list")
	}
}

func sessionErrorStatus(err error) int {
	var fieldErr *session.FieldError
	switch {
	case errors.As(err, &fieldErr),
		errors.Is(err, session.ErrMissingFields),
		errors.Is(err, session.ErrNoAccount),
		errors.Is(err, session.ErrNothingToSubmit):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrAccountNotFound), errors.Is(err, session.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrImportInProgress), errors.Is(err, session.ErrSubmitInProgress):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	response := errorResponse{Error: err.Error()}
	var fieldErr *session.FieldError
	if errors.As(err, &fieldErr) {
		response.Field = fieldErr.Field
	}
	writeJSON(w, status, response)
}

func writeDownload(w http.ResponseWriter, contentType, filename, body string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}
