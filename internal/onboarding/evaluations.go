package onboarding

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/common/metrics"
	"hospital-onboarding/internal/models"
	"hospital-onboarding/internal/validation"
)

// EvaluateManual records a reviewer-entered evaluation. It never changes the
// application status; the decision stays with the reviewer.
func (s *Service) EvaluateManual(ctx context.Context, applicationID string, scores models.CategoryScores, comments, evaluator string) (*models.EvaluationScore, error) {
	if err := validation.ValidateCategoryScores(scores); err != nil {
		return nil, apperr.Validation("scores must be between 0 and 100", err.Error())
	}

	app, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusSubmitted && app.Status != models.StatusUnderReview {
		return nil, apperr.Precondition("application is not open for evaluation",
			fmt.Sprintf("status: %s", app.Status))
	}

	result := s.engine.Finalize(scores)
	eval, err := s.insertEvaluation(ctx, app.ID, models.EvaluationManual, result.Scores,
		result.TotalScore, result.Recommendation, result.RiskLevel, result.Summary, comments, evaluator)
	if err != nil {
		return nil, err
	}

	metrics.EvaluationsCompleted.WithLabelValues("manual", string(eval.Recommendation)).Inc()
	s.audit(ctx, app.ID, "EVALUATION_RECORDED", evaluator,
		fmt.Sprintf("manual evaluation scored %.2f (%s)", eval.TotalScore, eval.Recommendation))

	return eval, nil
}

// EvaluateAuto runs the automatic pre-screen and acts on its recommendation:
// approve and reject transition the application, review parks it under
// review for a human decision.
func (s *Service) EvaluateAuto(ctx context.Context, applicationID, actor string) (*models.EvaluationScore, error) {
	app, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusSubmitted && app.Status != models.StatusUnderReview {
		return nil, apperr.Precondition("application is not open for evaluation",
			fmt.Sprintf("status: %s", app.Status))
	}

	verified, err := s.verifiedDocumentTypes(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	result := s.engine.Evaluate(app, verified)
	eval, err := s.insertEvaluation(ctx, app.ID, models.EvaluationAutomatic, result.Scores,
		result.TotalScore, result.Recommendation, result.RiskLevel, result.Summary, "", actor)
	if err != nil {
		return nil, err
	}

	metrics.EvaluationsCompleted.WithLabelValues("automatic", string(eval.Recommendation)).Inc()
	s.audit(ctx, app.ID, "EVALUATION_RECORDED", actor,
		fmt.Sprintf("automatic evaluation scored %.2f (%s)", eval.TotalScore, eval.Recommendation))

	if app.Status == models.StatusSubmitted {
		if app, err = s.UpdateStatus(ctx, app.ID, models.StatusUnderReview, actor, ""); err != nil {
			return nil, err
		}
	}

	switch eval.Recommendation {
	case models.RecommendApprove:
		if _, err := s.UpdateStatus(ctx, app.ID, models.StatusApproved, actor, ""); err != nil {
			return nil, err
		}
	case models.RecommendReject:
		reason := fmt.Sprintf("automatic evaluation scored %.2f, below the acceptance threshold", eval.TotalScore)
		if _, err := s.UpdateStatus(ctx, app.ID, models.StatusRejected, actor, reason); err != nil {
			return nil, err
		}
	}

	return eval, nil
}

func (s *Service) insertEvaluation(ctx context.Context, applicationID string, evalType models.EvaluationType,
	scores models.CategoryScores, total float64, rec models.Recommendation, risk models.RiskLevel,
	summary, comments, evaluator string) (*models.EvaluationScore, error) {

	eval := &models.EvaluationScore{
		ID:             uuid.New().String(),
		ApplicationID:  applicationID,
		Type:           evalType,
		Scores:         scores,
		TotalScore:     total,
		Recommendation: rec,
		RiskLevel:      risk,
		Summary:        summary,
		Comments:       comments,
		EvaluatedBy:    evaluator,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO evaluation_scores (
			id, application_id, type,
			facility_score, staffing_score, equipment_score, compliance_score,
			financial_score, location_score, services_score, reputation_score,
			total_score, recommendation, risk_level, summary, comments, evaluated_by, created_at
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		eval.ID, eval.ApplicationID, eval.Type,
		scores.Facility, scores.Staffing, scores.Equipment, scores.Compliance,
		scores.Financial, scores.Location, scores.Services, scores.Reputation,
		eval.TotalScore, eval.Recommendation, eval.RiskLevel,
		eval.Summary, nullString(eval.Comments), eval.EvaluatedBy, eval.CreatedAt,
	)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("insert evaluation: %w", err))
	}
	return eval, nil
}

// EvaluationReport is the evaluation list plus the running average.
type EvaluationReport struct {
	Evaluations  []*models.EvaluationScore `json:"evaluations"`
	AverageScore float64                   `json:"averageScore"`
}

// ListEvaluations returns an application's evaluations newest first, with
// the average total score across all of them.
func (s *Service) ListEvaluations(ctx context.Context, applicationID string) (*EvaluationReport, error) {
	if _, err := s.GetApplication(ctx, applicationID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, application_id, type,
		        facility_score, staffing_score, equipment_score, compliance_score,
		        financial_score, location_score, services_score, reputation_score,
		        total_score, recommendation, risk_level, summary, comments, evaluated_by, created_at
		 FROM evaluation_scores WHERE application_id = $1 ORDER BY created_at DESC`,
		applicationID,
	)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list evaluations: %w", err))
	}
	defer rows.Close()

	report := &EvaluationReport{}
	var sum float64
	for rows.Next() {
		var e models.EvaluationScore
		var summary, comments sql.NullString
		if err := rows.Scan(
			&e.ID, &e.ApplicationID, &e.Type,
			&e.Scores.Facility, &e.Scores.Staffing, &e.Scores.Equipment, &e.Scores.Compliance,
			&e.Scores.Financial, &e.Scores.Location, &e.Scores.Services, &e.Scores.Reputation,
			&e.TotalScore, &e.Recommendation, &e.RiskLevel, &summary, &comments,
			&e.EvaluatedBy, &e.CreatedAt,
		); err != nil {
			return nil, apperr.Internal(fmt.Errorf("scan evaluation: %w", err))
		}
		e.Summary = summary.String
		e.Comments = comments.String
		report.Evaluations = append(report.Evaluations, &e)
		sum += e.TotalScore
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("iterate evaluations: %w", err))
	}

	if n := len(report.Evaluations); n > 0 {
		report.AverageScore = math.Round(sum/float64(n)*100) / 100
	}
	return report, nil
}

func (s *Service) verifiedDocumentTypes(ctx context.Context, applicationID string) ([]models.DocumentType, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type FROM documents WHERE application_id = $1 AND verified = true`,
		applicationID,
	)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load verified documents: %w", err))
	}
	defer rows.Close()

	var types []models.DocumentType
	for rows.Next() {
		var t models.DocumentType
		if err := rows.Scan(&t); err != nil {
			return nil, apperr.Internal(fmt.Errorf("scan document type: %w", err))
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("iterate document types: %w", err))
	}
	return types, nil
}
