package onboarding

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/models"
)

var checklistColumnList = []string{
	"id", "application_id", "category", "title", "description",
	"is_required", "order_index", "completed", "completed_by", "completed_at",
}

func TestGetChecklistGroupsByCategory(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusSubmitted))
	mock.ExpectQuery(`SELECT (.+) FROM checklist_items`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(checklistColumnList).
			AddRow("c-1", "app-1", models.ChecklistDocuments, "Upload operating license", nil, true, 1, false, nil, nil).
			AddRow("c-2", "app-1", models.ChecklistDocuments, "Upload CAC registration", nil, true, 2, true, "amina", time.Now()).
			AddRow("c-3", "app-1", models.ChecklistVerification, "Verify submitted documents", nil, true, 6, false, nil, nil))

	groups, err := svc.GetChecklist(context.Background(), "app-1")
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, models.ChecklistDocuments, groups[0].Category)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, models.ChecklistVerification, groups[1].Category)
	assert.Len(t, groups[1].Items, 1)
}

func TestCompleteChecklistItem(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM checklist_items WHERE id`).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(checklistColumnList).
			AddRow("c-1", "app-1", models.ChecklistDocuments, "Upload operating license", nil, true, 1, false, nil, nil))
	mock.ExpectExec(`UPDATE checklist_items SET completed`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	item, err := svc.CompleteChecklistItem(context.Background(), "c-1", "reviewer@ops")
	require.NoError(t, err)

	assert.True(t, item.Completed)
	assert.Equal(t, "reviewer@ops", item.CompletedBy)
	require.NotNil(t, item.CompletedAt)
}

func TestCompleteChecklistItemTwiceIsNoOp(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	done := time.Now().UTC()
	mock.ExpectQuery(`SELECT (.+) FROM checklist_items WHERE id`).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(checklistColumnList).
			AddRow("c-1", "app-1", models.ChecklistDocuments, "Upload operating license", nil, true, 1, true, "amina", done))

	item, err := svc.CompleteChecklistItem(context.Background(), "c-1", "someone-else")
	require.NoError(t, err)

	assert.Equal(t, "amina", item.CompletedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteChecklistItemNotFound(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM checklist_items WHERE id`).
		WithArgs("c-missing").
		WillReturnRows(sqlmock.NewRows(checklistColumnList))

	_, err := svc.CompleteChecklistItem(context.Background(), "c-missing", "admin")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
