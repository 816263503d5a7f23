package onboarding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/common/metrics"
	"hospital-onboarding/internal/docstore"
	"hospital-onboarding/internal/models"
)

// DocumentStore persists the uploaded bytes.
type DocumentStore interface {
	Save(applicationID, fileName string, r io.Reader) (*docstore.SaveResult, error)
	Delete(path string) error
}

// SetDocumentStore wires the file storage collaborator.
func (s *Service) SetDocumentStore(store DocumentStore) {
	s.docs = store
}

// UploadDocument stores a supporting file for a non-terminal application.
// Applicants authenticate with their application number rather than a
// session.
func (s *Service) UploadDocument(ctx context.Context, applicationID, applicationNumber string,
	docType models.DocumentType, fileName, contentType string, r io.Reader) (*models.Document, error) {

	if s.docs == nil {
		return nil, apperr.Internal(errors.New("document store not configured"))
	}

	app, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicationNumber != applicationNumber {
		return nil, apperr.Forbidden("document", "upload")
	}
	if app.Status.IsTerminal() {
		return nil, apperr.Precondition("application is closed",
			fmt.Sprintf("status: %s", app.Status))
	}

	saved, err := s.docs.Save(app.ID, fileName, r)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:            uuid.New().String(),
		ApplicationID: app.ID,
		Type:          docType,
		FileName:      fileName,
		ContentType:   contentType,
		SizeBytes:     saved.SizeBytes,
		StoragePath:   saved.Path,
		Checksum:      saved.Checksum,
		UploadedAt:    time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (
			id, application_id, type, file_name, content_type, size_bytes,
			storage_path, checksum, verified, uploaded_at
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,false,$9)`,
		doc.ID, doc.ApplicationID, doc.Type, doc.FileName, doc.ContentType,
		doc.SizeBytes, doc.StoragePath, doc.Checksum, doc.UploadedAt,
	)
	if err != nil {
		if rmErr := s.docs.Delete(saved.Path); rmErr != nil {
			s.logger.Warn("orphaned upload cleanup failed", map[string]interface{}{"error": rmErr})
		}
		return nil, apperr.Internal(fmt.Errorf("insert document: %w", err))
	}

	if app.Stage == models.StageApplication {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE hospital_applications SET stage = $1, updated_at = $2 WHERE id = $3`,
			models.StageDocumentSubmission, time.Now().UTC(), app.ID,
		); err != nil {
			s.logger.Warn("stage advance failed", map[string]interface{}{"error": err})
		}
	}

	metrics.DocumentsUploaded.WithLabelValues(string(docType)).Inc()
	s.audit(ctx, app.ID, "DOCUMENT_UPLOADED", app.OwnerEmail,
		fmt.Sprintf("%s (%s)", fileName, docType))
	s.refreshDocumentChecklist(ctx, app.ID)

	return doc, nil
}

// ListDocuments returns an application's documents in upload order.
func (s *Service) ListDocuments(ctx context.Context, applicationID string) ([]*models.Document, error) {
	if _, err := s.GetApplication(ctx, applicationID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, application_id, type, file_name, content_type, size_bytes,
		        storage_path, checksum, verified, verified_by, verified_at, uploaded_at
		 FROM documents WHERE application_id = $1 ORDER BY uploaded_at`,
		applicationID,
	)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list documents: %w", err))
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("scan document: %w", err))
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("iterate documents: %w", err))
	}
	return docs, nil
}

// VerifyDocument marks a document authentic. Verification feeds the
// compliance score on the next automatic evaluation.
func (s *Service) VerifyDocument(ctx context.Context, documentID, verifier string) (*models.Document, error) {
	doc, err := s.getDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Verified {
		return doc, nil
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`UPDATE documents SET verified = true, verified_by = $1, verified_at = $2 WHERE id = $3`,
		verifier, now, documentID,
	)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("verify document: %w", err))
	}

	doc.Verified = true
	doc.VerifiedBy = verifier
	doc.VerifiedAt = &now

	s.audit(ctx, doc.ApplicationID, "DOCUMENT_VERIFIED", verifier,
		fmt.Sprintf("%s (%s)", doc.FileName, doc.Type))
	s.refreshDocumentChecklist(ctx, doc.ApplicationID)

	return doc, nil
}

// DeleteDocument removes the database row and the stored file.
func (s *Service) DeleteDocument(ctx context.Context, documentID, actor string) error {
	doc, err := s.getDocument(ctx, documentID)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, documentID); err != nil {
		return apperr.Internal(fmt.Errorf("delete document: %w", err))
	}

	if s.docs != nil {
		if err := s.docs.Delete(doc.StoragePath); err != nil {
			s.logger.Warn("stored file removal failed", map[string]interface{}{
				"error":      err,
				"documentId": documentID,
			})
		}
	}

	s.audit(ctx, doc.ApplicationID, "DOCUMENT_DELETED", actor,
		fmt.Sprintf("%s (%s)", doc.FileName, doc.Type))
	s.refreshDocumentChecklist(ctx, doc.ApplicationID)
	return nil
}

func (s *Service) getDocument(ctx context.Context, documentID string) (*models.Document, error) {
	doc, err := scanDocument(s.db.QueryRowContext(ctx,
		`SELECT id, application_id, type, file_name, content_type, size_bytes,
		        storage_path, checksum, verified, verified_by, verified_at, uploaded_at
		 FROM documents WHERE id = $1`,
		documentID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("document", documentID)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load document: %w", err))
	}
	return doc, nil
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	var verifiedBy sql.NullString
	var verifiedAt sql.NullTime

	err := row.Scan(
		&doc.ID, &doc.ApplicationID, &doc.Type, &doc.FileName, &doc.ContentType,
		&doc.SizeBytes, &doc.StoragePath, &doc.Checksum, &doc.Verified,
		&verifiedBy, &verifiedAt, &doc.UploadedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.VerifiedBy = verifiedBy.String
	if verifiedAt.Valid {
		doc.VerifiedAt = &verifiedAt.Time
	}
	return &doc, nil
}
