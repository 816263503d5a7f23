package onboarding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/models"
	"hospital-onboarding/internal/progress"
)

// Progress assembles the projection snapshot for an application and returns
// the public progress report.
func (s *Service) Progress(ctx context.Context, applicationID string) (*progress.Report, error) {
	app, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	var docCount, evalCount int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE application_id = $1`, app.ID,
	).Scan(&docCount); err != nil {
		return nil, apperr.Internal(fmt.Errorf("count documents: %w", err))
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM evaluation_scores WHERE application_id = $1`, app.ID,
	).Scan(&evalCount); err != nil {
		return nil, apperr.Internal(fmt.Errorf("count evaluations: %w", err))
	}

	var contract *models.Contract
	var contractStatus models.ContractStatus
	err = s.db.QueryRowContext(ctx,
		`SELECT status FROM contracts WHERE application_id = $1 ORDER BY created_at DESC LIMIT 1`,
		app.ID,
	).Scan(&contractStatus)
	if err == nil {
		contract = &models.Contract{Status: contractStatus}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Internal(fmt.Errorf("load contract status: %w", err))
	}

	hospital, err := s.findHospitalByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	report := progress.Project(progress.Snapshot{
		Application:     app,
		DocumentCount:   docCount,
		EvaluationCount: evalCount,
		Contract:        contract,
		HospitalExists:  hospital != nil,
	})
	return &report, nil
}
