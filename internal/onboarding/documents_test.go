package onboarding

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/common/logger"
	"hospital-onboarding/internal/docstore"
	"hospital-onboarding/internal/models"
)

var documentColumnList = []string{
	"id", "application_id", "type", "file_name", "content_type", "size_bytes",
	"storage_path", "checksum", "verified", "verified_by", "verified_at", "uploaded_at",
}

func documentRow(id string, verified bool) *sqlmock.Rows {
	now := time.Now().UTC()
	var verifiedBy interface{}
	var verifiedAt interface{}
	if verified {
		verifiedBy = "reviewer@ops"
		verifiedAt = now
	}
	return sqlmock.NewRows(documentColumnList).AddRow(
		id, "app-1", models.DocumentLicense, "license.pdf", "application/pdf",
		int64(2048), "/data/documents/app-1/license.pdf", "abc123",
		verified, verifiedBy, verifiedAt, now,
	)
}

func TestUploadDocumentChecksApplicationNumber(t *testing.T) {
	svc, mock, _, _ := newTestService(t)
	svc.SetDocumentStore(docstore.New(t.TempDir(), 1, logger.NewTestLogger(t)))

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusSubmitted))

	_, err := svc.UploadDocument(context.Background(), "app-1", "APP-WRONG-NUMBER",
		models.DocumentLicense, "license.pdf", "application/pdf", strings.NewReader("scan"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestUploadDocumentRejectsClosedApplication(t *testing.T) {
	svc, mock, _, _ := newTestService(t)
	svc.SetDocumentStore(docstore.New(t.TempDir(), 1, logger.NewTestLogger(t)))

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusWithdrawn))

	_, err := svc.UploadDocument(context.Background(), "app-1", "APP-2026-08-000007",
		models.DocumentLicense, "license.pdf", "application/pdf", strings.NewReader("scan"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}

func TestUploadDocumentStoresFileAndRow(t *testing.T) {
	svc, mock, _, _ := newTestService(t)
	svc.SetDocumentStore(docstore.New(t.TempDir(), 1, logger.NewTestLogger(t)))

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusSubmitted))
	mock.ExpectExec(`INSERT INTO documents`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT type FROM documents`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"type"}))
	mock.ExpectExec(`UPDATE checklist_items`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	doc, err := svc.UploadDocument(context.Background(), "app-1", "APP-2026-08-000007",
		models.DocumentLicense, "license.pdf", "application/pdf", strings.NewReader("scan bytes"))
	require.NoError(t, err)

	assert.Equal(t, models.DocumentLicense, doc.Type)
	assert.NotEmpty(t, doc.Checksum)
	assert.Equal(t, int64(len("scan bytes")), doc.SizeBytes)
	assert.False(t, doc.Verified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyDocumentIsIdempotent(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM documents WHERE id`).
		WithArgs("doc-1").
		WillReturnRows(documentRow("doc-1", true))

	doc, err := svc.VerifyDocument(context.Background(), "doc-1", "another@ops")
	require.NoError(t, err)

	assert.True(t, doc.Verified)
	assert.Equal(t, "reviewer@ops", doc.VerifiedBy, "re-verification keeps the original verifier")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyDocumentMarksVerified(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM documents WHERE id`).
		WithArgs("doc-1").
		WillReturnRows(documentRow("doc-1", false))
	mock.ExpectExec(`UPDATE documents SET verified`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT type FROM documents`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"type"}).AddRow("LICENSE"))
	mock.ExpectExec(`UPDATE checklist_items`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	doc, err := svc.VerifyDocument(context.Background(), "doc-1", "reviewer@ops")
	require.NoError(t, err)

	assert.True(t, doc.Verified)
	require.NotNil(t, doc.VerifiedAt)
}

func TestVerifyDocumentCompletesRequiredChecklist(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM documents WHERE id`).
		WithArgs("doc-1").
		WillReturnRows(documentRow("doc-1", false))
	mock.ExpectExec(`UPDATE documents SET verified`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT type FROM documents`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"type"}).
			AddRow("LICENSE").AddRow("REGISTRATION").AddRow("TAX_CERTIFICATE"))
	mock.ExpectExec(`UPDATE checklist_items\s+SET completed = true, completed_by = 'system'`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	_, err := svc.VerifyDocument(context.Background(), "doc-1", "reviewer@ops")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDocumentRollsBackSystemChecklistCompletions(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM documents WHERE id`).
		WithArgs("doc-1").
		WillReturnRows(documentRow("doc-1", true))
	mock.ExpectExec(`DELETE FROM documents`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT type FROM documents`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"type"}).
			AddRow("REGISTRATION").AddRow("TAX_CERTIFICATE"))
	mock.ExpectExec(`UPDATE checklist_items\s+SET completed = false`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := svc.DeleteDocument(context.Background(), "doc-1", "admin")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDocumentNotFound(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM documents WHERE id`).
		WithArgs("doc-missing").
		WillReturnRows(sqlmock.NewRows(documentColumnList))

	err := svc.DeleteDocument(context.Background(), "doc-missing", "admin")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
