package onboarding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/models"
)

// seedChecklist inserts the default checklist for a new application.
func (s *Service) seedChecklist(ctx context.Context, applicationID string) error {
	for _, item := range models.DefaultChecklistTemplate {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO checklist_items (
				id, application_id, category, title, description,
				is_required, order_index, completed
			 ) VALUES ($1,$2,$3,$4,$5,$6,$7,false)`,
			uuid.New().String(), applicationID, item.Category, item.Title,
			item.Description, item.IsRequired, item.OrderIndex,
		)
		if err != nil {
			return fmt.Errorf("seed checklist item %q: %w", item.Title, err)
		}
	}
	return nil
}

// ChecklistGroup is all items in one category, in order.
type ChecklistGroup struct {
	Category models.ChecklistCategory `json:"category"`
	Items    []*models.ChecklistItem  `json:"items"`
}

// GetChecklist returns the application's checklist grouped by category.
func (s *Service) GetChecklist(ctx context.Context, applicationID string) ([]ChecklistGroup, error) {
	if _, err := s.GetApplication(ctx, applicationID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, application_id, category, title, description,
		        is_required, order_index, completed, completed_by, completed_at
		 FROM checklist_items WHERE application_id = $1 ORDER BY order_index`,
		applicationID,
	)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list checklist: %w", err))
	}
	defer rows.Close()

	var groups []ChecklistGroup
	byCategory := map[models.ChecklistCategory]int{}

	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("scan checklist item: %w", err))
		}

		idx, ok := byCategory[item.Category]
		if !ok {
			groups = append(groups, ChecklistGroup{Category: item.Category})
			idx = len(groups) - 1
			byCategory[item.Category] = idx
		}
		groups[idx].Items = append(groups[idx].Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("iterate checklist: %w", err))
	}
	return groups, nil
}

// CompleteChecklistItem marks one item done. Completing it twice is a no-op.
func (s *Service) CompleteChecklistItem(ctx context.Context, itemID, actor string) (*models.ChecklistItem, error) {
	item, err := scanChecklistItem(s.db.QueryRowContext(ctx,
		`SELECT id, application_id, category, title, description,
		        is_required, order_index, completed, completed_by, completed_at
		 FROM checklist_items WHERE id = $1`,
		itemID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("checklist item", itemID)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load checklist item: %w", err))
	}

	if item.Completed {
		return item, nil
	}

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE checklist_items SET completed = true, completed_by = $1, completed_at = $2 WHERE id = $3`,
		actor, now, itemID,
	); err != nil {
		return nil, apperr.Internal(fmt.Errorf("complete checklist item: %w", err))
	}

	item.Completed = true
	item.CompletedBy = actor
	item.CompletedAt = &now

	s.audit(ctx, item.ApplicationID, "CHECKLIST_ITEM_COMPLETED", actor, item.Title)
	return item, nil
}

// refreshDocumentChecklist recomputes the documents category after a
// document mutation: required items flip complete once every required
// document type has a verified upload, and system completions are rolled
// back if a deletion breaks that. Reviewer-made completions are left alone.
// Failures are logged, never fatal.
func (s *Service) refreshDocumentChecklist(ctx context.Context, applicationID string) {
	satisfied, err := s.requiredDocumentsVerified(ctx, applicationID)
	if err != nil {
		s.logger.Warn("document checklist recompute failed", map[string]interface{}{
			"error":         err,
			"applicationId": applicationID,
		})
		return
	}

	var execErr error
	if satisfied {
		_, execErr = s.db.ExecContext(ctx,
			`UPDATE checklist_items
			 SET completed = true, completed_by = 'system', completed_at = $1
			 WHERE application_id = $2 AND category = $3 AND is_required = true AND completed = false`,
			time.Now().UTC(), applicationID, models.ChecklistDocuments,
		)
	} else {
		_, execErr = s.db.ExecContext(ctx,
			`UPDATE checklist_items
			 SET completed = false, completed_by = NULL, completed_at = NULL
			 WHERE application_id = $1 AND category = $2 AND completed = true AND completed_by = 'system'`,
			applicationID, models.ChecklistDocuments,
		)
	}
	if execErr != nil {
		s.logger.Warn("document checklist update failed", map[string]interface{}{
			"error":         execErr,
			"applicationId": applicationID,
		})
	}
}

// requiredDocumentsVerified reports whether every required document type has
// a verified upload.
func (s *Service) requiredDocumentsVerified(ctx context.Context, applicationID string) (bool, error) {
	verified, err := s.verifiedDocumentTypes(ctx, applicationID)
	if err != nil {
		return false, err
	}

	verifiedSet := make(map[models.DocumentType]bool, len(verified))
	for _, t := range verified {
		verifiedSet[t] = true
	}
	for _, required := range models.RequiredDocumentTypes {
		if !verifiedSet[required] {
			return false, nil
		}
	}
	return true, nil
}

func scanChecklistItem(row rowScanner) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	var description, completedBy sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&item.ID, &item.ApplicationID, &item.Category, &item.Title, &description,
		&item.IsRequired, &item.OrderIndex, &item.Completed, &completedBy, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Description = description.String
	item.CompletedBy = completedBy.String
	if completedAt.Valid {
		item.CompletedAt = &completedAt.Time
	}
	return &item, nil
}
