// Package httpapi exposes the onboarding pipeline over a chi-routed JSON
// API.
package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hospital-onboarding/internal/auth"
	"hospital-onboarding/internal/common/logger"
	"hospital-onboarding/internal/contracts"
	"hospital-onboarding/internal/models"
	"hospital-onboarding/internal/onboarding"
	"hospital-onboarding/internal/progress"
	"hospital-onboarding/internal/search"
)

// ApplicationService is the onboarding surface the API depends on; satisfied
// by onboarding.Service.
type ApplicationService interface {
	Submit(ctx context.Context, app *models.Application) (*models.Application, error)
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	ListApplications(ctx context.Context, filter onboarding.ListFilter) ([]*models.Application, error)
	UpdateStatus(ctx context.Context, id string, next models.ApplicationStatus, actor, reason string) (*models.Application, error)
	Progress(ctx context.Context, applicationID string) (*progress.Report, error)
	UploadDocument(ctx context.Context, applicationID, applicationNumber string,
		docType models.DocumentType, fileName, contentType string, r io.Reader) (*models.Document, error)
	ListDocuments(ctx context.Context, applicationID string) ([]*models.Document, error)
	VerifyDocument(ctx context.Context, documentID, verifier string) (*models.Document, error)
	DeleteDocument(ctx context.Context, documentID, actor string) error
	EvaluateManual(ctx context.Context, applicationID string, scores models.CategoryScores, comments, evaluator string) (*models.EvaluationScore, error)
	EvaluateAuto(ctx context.Context, applicationID, actor string) (*models.EvaluationScore, error)
	ListEvaluations(ctx context.Context, applicationID string) (*onboarding.EvaluationReport, error)
	GetChecklist(ctx context.Context, applicationID string) ([]onboarding.ChecklistGroup, error)
	CompleteChecklistItem(ctx context.Context, itemID, actor string) (*models.ChecklistItem, error)
	StatusSummary(ctx context.Context) (*onboarding.Summary, error)
}

// ContractService is the contract lifecycle surface; satisfied by
// contracts.Service.
type ContractService interface {
	Generate(ctx context.Context, input contracts.GenerateInput) (*models.Contract, error)
	Get(ctx context.Context, id string) (*models.Contract, error)
	Send(ctx context.Context, id string) (*models.Contract, error)
	Sign(ctx context.Context, id string, party models.SignatoryParty, sig models.Signature) (*models.Contract, error)
	MarkViewed(ctx context.Context, id string) error
}

// Searcher runs keyword queries over indexed applications.
type Searcher interface {
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

// Server holds the handlers' collaborators.
type Server struct {
	apps      ApplicationService
	contracts ContractService
	searcher  Searcher
	sessions  Authenticator
	logger    logger.Logger
}

func NewServer(apps ApplicationService, contractSvc ContractService, searcher Searcher,
	sessions Authenticator, log logger.Logger) *Server {
	return &Server{
		apps:      apps,
		contracts: contractSvc,
		searcher:  searcher,
		sessions:  sessions,
		logger:    log.WithFields(map[string]interface{}{"component": "http-api"}),
	}
}

// Routes assembles the full router, including health and prometheus
// endpoints outside the versioned API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(observe(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Applicant-facing routes authenticate with the application
		// number instead of a session.
		r.Post("/applications", s.handleSubmitApplication)
		r.Get("/applications/{id}/progress", s.handleProgress)
		r.Post("/applications/{id}/documents", s.handleUploadDocument)
		r.Post("/contracts/{id}/sign/hospital", s.handleSignContract(models.PartyHospital))
		r.Post("/contracts/{id}/view", s.handleMarkContractViewed)

		r.Group(func(r chi.Router) {
			r.Use(authenticate(s.sessions, s.logger))

			r.With(requirePermission(auth.PermApplicationsRead, s.logger)).
				Get("/applications", s.handleListApplications)
			r.With(requirePermission(auth.PermSearchRead, s.logger)).
				Get("/applications/search", s.handleSearch)
			r.With(requirePermission(auth.PermApplicationsRead, s.logger)).
				Get("/applications/{id}", s.handleGetApplication)
			r.With(requirePermission(auth.PermApplicationsReview, s.logger)).
				Patch("/applications/{id}/status", s.handleUpdateStatus)

			r.With(requirePermission(auth.PermApplicationsRead, s.logger)).
				Get("/applications/{id}/documents", s.handleListDocuments)
			r.With(requirePermission(auth.PermDocumentsVerify, s.logger)).
				Patch("/documents/{id}/verify", s.handleVerifyDocument)
			r.With(requirePermission(auth.PermDocumentsManage, s.logger)).
				Delete("/documents/{id}", s.handleDeleteDocument)

			r.With(requirePermission(auth.PermEvaluationsWrite, s.logger)).
				Post("/applications/{id}/evaluations", s.handleManualEvaluation)
			r.With(requirePermission(auth.PermEvaluationsWrite, s.logger)).
				Post("/applications/{id}/evaluations/auto", s.handleAutoEvaluation)
			r.With(requirePermission(auth.PermApplicationsRead, s.logger)).
				Get("/applications/{id}/evaluations", s.handleListEvaluations)

			r.With(requirePermission(auth.PermApplicationsRead, s.logger)).
				Get("/applications/{id}/checklist", s.handleGetChecklist)
			r.With(requirePermission(auth.PermChecklistUpdate, s.logger)).
				Patch("/checklist/{id}", s.handleCompleteChecklistItem)

			r.With(requirePermission(auth.PermContractsManage, s.logger)).
				Post("/contracts", s.handleGenerateContract)
			r.With(requirePermission(auth.PermContractsManage, s.logger)).
				Get("/contracts/{id}", s.handleGetContract)
			r.With(requirePermission(auth.PermContractsManage, s.logger)).
				Post("/contracts/{id}/send", s.handleSendContract)
			r.With(requirePermission(auth.PermContractsSign, s.logger)).
				Post("/contracts/{id}/sign/operator", s.handleSignContract(models.PartyOperator))

			r.With(requirePermission(auth.PermMetricsRead, s.logger)).
				Get("/metrics/onboarding", s.handleStatusSummary)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
