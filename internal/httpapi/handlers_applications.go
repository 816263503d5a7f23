package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/models"
	"hospital-onboarding/internal/onboarding"
	"hospital-onboarding/internal/search"
)

// actor returns who performed the request, for audit stamping.
func actor(r *http.Request) string {
	if p := principalFrom(r.Context()); p != nil {
		return p.Email
	}
	return "anonymous"
}

func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	var app models.Application
	if err := decodeValidated(r, "submitApplication", &app); err != nil {
		writeError(w, s.logger, err)
		return
	}

	created, err := s.apps.Submit(r.Context(), &app)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := s.apps.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	apps, err := s.apps.ListApplications(r.Context(), onboarding.ListFilter{
		Status: models.ApplicationStatus(q.Get("status")),
		State:  q.Get("state"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applications": apps,
		"count":        len(apps),
	})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.ApplicationStatus `json:"status"`
		Reason string                   `json:"reason"`
	}
	if err := decodeValidated(r, "updateStatus", &body); err != nil {
		writeError(w, s.logger, err)
		return
	}

	app, err := s.apps.UpdateStatus(r.Context(), chi.URLParam(r, "id"), body.Status, actor(r), body.Reason)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	report, err := s.apps.Progress(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// maxUploadMemory bounds the multipart parse buffer; larger files spill to
// temp files and the document store enforces the real size limit.
const maxUploadMemory = 8 << 20

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, s.logger, apperr.Validation("expected multipart form upload", err.Error()))
		return
	}

	docType := models.DocumentType(r.FormValue("type"))
	appNumber := r.FormValue("applicationNumber")

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, s.logger, apperr.Validation("missing file field", err.Error()))
		return
	}
	defer file.Close()

	doc, err := s.apps.UploadDocument(r.Context(), chi.URLParam(r, "id"), appNumber,
		docType, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.apps.ListDocuments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

func (s *Server) handleVerifyDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.apps.VerifyDocument(r.Context(), chi.URLParam(r, "id"), actor(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.apps.DeleteDocument(r.Context(), chi.URLParam(r, "id"), actor(r)); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleManualEvaluation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Scores   models.CategoryScores `json:"scores"`
		Comments string                `json:"comments"`
	}
	if err := decodeValidated(r, "manualEvaluation", &body); err != nil {
		writeError(w, s.logger, err)
		return
	}

	eval, err := s.apps.EvaluateManual(r.Context(), chi.URLParam(r, "id"), body.Scores, body.Comments, actor(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, eval)
}

func (s *Server) handleAutoEvaluation(w http.ResponseWriter, r *http.Request) {
	eval, err := s.apps.EvaluateAuto(r.Context(), chi.URLParam(r, "id"), actor(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, eval)
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	report, err := s.apps.ListEvaluations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleGetChecklist(w http.ResponseWriter, r *http.Request) {
	groups, err := s.apps.GetChecklist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"checklist": groups})
}

func (s *Server) handleCompleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.apps.CompleteChecklistItem(r.Context(), chi.URLParam(r, "id"), actor(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, _ := strconv.Atoi(q.Get("from"))
	size, _ := strconv.Atoi(q.Get("size"))

	result, err := s.searcher.Search(r.Context(), search.Query{
		Keywords: q.Get("q"),
		Status:   q.Get("status"),
		State:    q.Get("state"),
		From:     from,
		Size:     size,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatusSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.apps.StatusSummary(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
