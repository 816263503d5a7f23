package onboarding

import (
	"context"
	"fmt"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/models"
)

// Summary is the operational overview surfaced on the metrics endpoint.
type Summary struct {
	TotalApplications int                              `json:"totalApplications"`
	ByStatus          map[models.ApplicationStatus]int `json:"byStatus"`
	ActiveHospitals   int                              `json:"activeHospitals"`
	PendingDocuments  int                              `json:"pendingDocuments"`
}

// StatusSummary aggregates pipeline counts across the whole system.
func (s *Service) StatusSummary(ctx context.Context) (*Summary, error) {
	summary := &Summary{ByStatus: map[models.ApplicationStatus]int{}}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM hospital_applications GROUP BY status`)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("count applications: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var status models.ApplicationStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperr.Internal(fmt.Errorf("scan status count: %w", err))
		}
		summary.ByStatus[status] = count
		summary.TotalApplications += count
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("iterate status counts: %w", err))
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hospitals WHERE is_active`,
	).Scan(&summary.ActiveHospitals); err != nil {
		return nil, apperr.Internal(fmt.Errorf("count hospitals: %w", err))
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE NOT verified`,
	).Scan(&summary.PendingDocuments); err != nil {
		return nil, apperr.Internal(fmt.Errorf("count unverified documents: %w", err))
	}

	return summary, nil
}
