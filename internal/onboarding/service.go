// Package onboarding implements the application lifecycle: intake, review,
// evaluation, documents and promotion into an active hospital.
package onboarding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/common/logger"
	"hospital-onboarding/internal/common/metrics"
	"hospital-onboarding/internal/evaluation"
	"hospital-onboarding/internal/models"
	"hospital-onboarding/internal/validation"
)

// Notifier is the outbound notification surface used by the service.
type Notifier interface {
	ApplicationSubmitted(ctx context.Context, app *models.Application)
	StatusUpdate(ctx context.Context, app *models.Application, previous models.ApplicationStatus)
	OnboardingComplete(ctx context.Context, app *models.Application, hospital *models.Hospital)
}

// SearchIndexer mirrors application snapshots into the search index.
type SearchIndexer interface {
	IndexApplication(ctx context.Context, app *models.Application) error
}

// Service coordinates the onboarding workflow against PostgreSQL.
type Service struct {
	db        *sql.DB
	engine    *evaluation.Engine
	allocator *NumberAllocator
	notifier  Notifier
	indexer   SearchIndexer
	docs      DocumentStore
	logger    logger.Logger
}

func NewService(db *sql.DB, engine *evaluation.Engine, notifier Notifier, indexer SearchIndexer, log logger.Logger) *Service {
	return &Service{
		db:        db,
		engine:    engine,
		allocator: NewNumberAllocator(db),
		notifier:  notifier,
		indexer:   indexer,
		logger:    log.WithFields(map[string]interface{}{"component": "onboarding-service"}),
	}
}

const applicationColumns = `
	id, application_number, status, stage,
	hospital_name, legal_name, registration_number, tax_id, facility_type,
	owner_first_name, owner_last_name, owner_email, owner_phone, owner_nin,
	address, city, state, lga, is_rural,
	bed_capacity, staff_count, doctor_count, nurse_count,
	has_emergency, has_pharmacy, has_laboratory, has_radiology, has_parking, near_transit,
	services_offered, specializations,
	has_insurance_partners, has_hmo_partners, has_government_contract,
	years_in_operation, estimated_revenue, business_plan,
	rejection_reason, decided_by, decided_at, hospital_id,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var app models.Application
	var legalName, registrationNumber, taxID, lga, businessPlan sql.NullString
	var ownerNIN, rejectionReason, decidedBy, hospitalID sql.NullString
	var decidedAt sql.NullTime

	err := row.Scan(
		&app.ID, &app.ApplicationNumber, &app.Status, &app.Stage,
		&app.HospitalName, &legalName, &registrationNumber, &taxID, &app.FacilityType,
		&app.OwnerFirstName, &app.OwnerLastName, &app.OwnerEmail, &app.OwnerPhone, &ownerNIN,
		&app.Address, &app.City, &app.State, &lga, &app.IsRural,
		&app.BedCapacity, &app.StaffCount, &app.DoctorCount, &app.NurseCount,
		&app.HasEmergency, &app.HasPharmacy, &app.HasLaboratory, &app.HasRadiology,
		&app.HasParking, &app.NearTransit,
		pq.Array(&app.ServicesOffered), pq.Array(&app.Specializations),
		&app.HasInsurancePartners, &app.HasHMOPartners, &app.HasGovernmentContract,
		&app.YearsInOperation, &app.EstimatedRevenue, &businessPlan,
		&rejectionReason, &decidedBy, &decidedAt, &hospitalID,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	app.LegalName = legalName.String
	app.RegistrationNumber = registrationNumber.String
	app.TaxID = taxID.String
	app.LGA = lga.String
	app.BusinessPlan = businessPlan.String
	app.OwnerNIN = ownerNIN.String
	app.RejectionReason = rejectionReason.String
	app.DecidedBy = decidedBy.String
	app.HospitalID = hospitalID.String
	if decidedAt.Valid {
		app.DecidedAt = &decidedAt.Time
	}
	return &app, nil
}

// Submit validates and records a new application, seeds its checklist and
// fires the confirmation notification.
func (s *Service) Submit(ctx context.Context, app *models.Application) (*models.Application, error) {
	if err := validation.ValidateApplication(app); err != nil {
		return nil, apperr.Validation("invalid application", err.Error())
	}

	// One in-flight application per contact email. The partial unique index
	// on owner_email backs this check under concurrency.
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT application_number FROM hospital_applications
		 WHERE owner_email = $1 AND status NOT IN ('REJECTED', 'WITHDRAWN')
		 LIMIT 1`,
		app.OwnerEmail,
	).Scan(&existing)
	if err == nil {
		return nil, apperr.Conflict("an active application already exists for this email",
			fmt.Sprintf("application: %s", existing))
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Internal(fmt.Errorf("check existing application: %w", err))
	}

	now := time.Now().UTC()
	number, err := s.allocator.NextApplicationNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	app.ID = uuid.New().String()
	app.ApplicationNumber = number
	app.Status = models.StatusSubmitted
	app.Stage = models.StageApplication
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO hospital_applications (`+applicationColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,
		         $20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,
		         $37,$38,$39,$40,$41,$42,$43)`,
		app.ID, app.ApplicationNumber, app.Status, app.Stage,
		app.HospitalName, nullString(app.LegalName), nullString(app.RegistrationNumber),
		nullString(app.TaxID), app.FacilityType,
		app.OwnerFirstName, app.OwnerLastName, app.OwnerEmail, app.OwnerPhone,
		nullString(app.OwnerNIN),
		app.Address, app.City, app.State, nullString(app.LGA), app.IsRural,
		app.BedCapacity, app.StaffCount, app.DoctorCount, app.NurseCount,
		app.HasEmergency, app.HasPharmacy, app.HasLaboratory, app.HasRadiology,
		app.HasParking, app.NearTransit,
		pq.Array(app.ServicesOffered), pq.Array(app.Specializations),
		app.HasInsurancePartners, app.HasHMOPartners, app.HasGovernmentContract,
		app.YearsInOperation, app.EstimatedRevenue, nullString(app.BusinessPlan),
		nil, nil, nil, nil,
		app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("an active application already exists for this email", "")
		}
		return nil, apperr.Internal(fmt.Errorf("insert application: %w", err))
	}

	if err := s.seedChecklist(ctx, app.ID); err != nil {
		s.logger.Error("checklist seeding failed", map[string]interface{}{
			"error":         err,
			"applicationId": app.ID,
		})
	}

	s.audit(ctx, app.ID, "APPLICATION_SUBMITTED", app.OwnerEmail,
		fmt.Sprintf("application %s submitted", app.ApplicationNumber))
	metrics.ApplicationsSubmitted.Inc()

	s.notifier.ApplicationSubmitted(ctx, app)
	s.mirrorToIndex(ctx, app)

	return app, nil
}

// GetApplication loads one application by id.
func (s *Service) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	app, err := scanApplication(s.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM hospital_applications WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("application", id)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load application: %w", err))
	}
	return app, nil
}

// ListFilter narrows ListApplications.
type ListFilter struct {
	Status models.ApplicationStatus
	State  string
	Limit  int
	Offset int
}

// ListApplications returns applications newest first.
func (s *Service) ListApplications(ctx context.Context, filter ListFilter) ([]*models.Application, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	query := `SELECT ` + applicationColumns + ` FROM hospital_applications WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.State != "" {
		args = append(args, filter.State)
		query += fmt.Sprintf(" AND state = $%d", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list applications: %w", err))
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("scan application: %w", err))
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("iterate applications: %w", err))
	}
	return apps, nil
}

// UpdateStatus applies a guarded status transition. Rejections require a
// reason; decisions stamp the acting reviewer.
func (s *Service) UpdateStatus(ctx context.Context, id string, next models.ApplicationStatus, actor, reason string) (*models.Application, error) {
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if app.Status == next {
		return app, nil
	}
	if !app.Status.CanTransition(next) {
		return nil, apperr.Precondition("illegal status transition",
			fmt.Sprintf("%s -> %s", app.Status, next))
	}
	if next == models.StatusRejected && reason == "" {
		return nil, apperr.Validation("rejection requires a reason", "")
	}

	previous := app.Status
	now := time.Now().UTC()
	app.Status = next
	app.UpdatedAt = now

	switch next {
	case models.StatusUnderReview:
		app.Stage = models.StageEvaluation
	case models.StatusApproved:
		app.Stage = models.StageContractNegotiation
		app.DecidedBy = actor
		app.DecidedAt = &now
	case models.StatusRejected:
		app.RejectionReason = reason
		app.DecidedBy = actor
		app.DecidedAt = &now
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE hospital_applications
		 SET status = $1, stage = $2, rejection_reason = $3, decided_by = $4,
		     decided_at = $5, updated_at = $6
		 WHERE id = $7 AND status = $8`,
		app.Status, app.Stage, nullString(app.RejectionReason), nullString(app.DecidedBy),
		app.DecidedAt, app.UpdatedAt, app.ID, previous,
	)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("update status: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("update status result: %w", err))
	}
	if affected == 0 {
		return nil, apperr.Conflict("application changed concurrently", "retry the transition")
	}

	s.audit(ctx, app.ID, "STATUS_CHANGED", actor,
		fmt.Sprintf("%s -> %s", previous, next))
	metrics.ApplicationStatusTransitions.WithLabelValues(string(previous), string(next)).Inc()

	s.notifier.StatusUpdate(ctx, app, previous)
	s.mirrorToIndex(ctx, app)

	return app, nil
}

// EnsureHospitalShell creates the inactive hospital record backing a
// contract, or returns the existing one. The shell gives the contract a
// billing counterpart before anything is signed.
func (s *Service) EnsureHospitalShell(ctx context.Context, applicationID string) (*models.Hospital, error) {
	app, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	existing, err := s.findHospitalByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	shell := &models.Hospital{
		ID:            uuid.New().String(),
		ApplicationID: app.ID,
		Name:          app.HospitalName,
		FacilityType:  app.FacilityType,
		Address:       app.Address,
		City:          app.City,
		State:         app.State,
		ContactEmail:  app.OwnerEmail,
		ContactPhone:  app.OwnerPhone,
		BedCapacity:   app.BedCapacity,
		IsActive:      false,
		CreatedAt:     now,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO hospitals (
			id, application_id, contract_id, name, facility_type, address, city, state,
			contact_email, contact_phone, bed_capacity, is_active, activated_at, created_at
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		 ON CONFLICT (application_id) DO NOTHING`,
		shell.ID, shell.ApplicationID, nil, shell.Name,
		shell.FacilityType, shell.Address, shell.City, shell.State,
		shell.ContactEmail, shell.ContactPhone, shell.BedCapacity,
		shell.IsActive, nil, shell.CreatedAt,
	)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("insert hospital shell: %w", err))
	}

	// A concurrent caller may have won the upsert; reload to be sure.
	created, err := s.findHospitalByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, apperr.Internal(errors.New("hospital missing after shell creation"))
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE hospital_applications SET hospital_id = $1, updated_at = $2 WHERE id = $3`,
		created.ID, time.Now().UTC(), app.ID,
	); err != nil {
		s.logger.Warn("failed to link hospital shell to application", map[string]interface{}{
			"error":         err,
			"applicationId": app.ID,
		})
	}

	s.audit(ctx, app.ID, "HOSPITAL_SHELL_CREATED", "system",
		fmt.Sprintf("hospital %s created pending contract signatures", created.ID))

	return created, nil
}

// PromoteToHospital flips the hospital record active for a fully signed
// contract, creating it first if the shell is missing. Calling it again for
// an active hospital is a no-op.
func (s *Service) PromoteToHospital(ctx context.Context, applicationID, contractID string) (*models.Hospital, error) {
	app, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusApproved {
		return nil, apperr.Precondition("only approved applications can be promoted",
			fmt.Sprintf("status: %s", app.Status))
	}

	hospital, err := s.findHospitalByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if hospital == nil {
		if hospital, err = s.EnsureHospitalShell(ctx, applicationID); err != nil {
			return nil, err
		}
	}
	if hospital.IsActive {
		return hospital, nil
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE hospitals SET is_active = true, contract_id = $1, activated_at = $2
		 WHERE id = $3 AND is_active = false`,
		contractID, now, hospital.ID,
	)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("activate hospital: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("activate hospital result: %w", err))
	}
	if affected == 0 {
		// A concurrent promotion activated it first.
		return s.findHospitalByApplication(ctx, applicationID)
	}

	hospital.IsActive = true
	hospital.ContractID = contractID
	hospital.ActivatedAt = &now

	app.HospitalID = hospital.ID
	app.Stage = models.StageCompleted
	if _, err := s.db.ExecContext(ctx,
		`UPDATE hospital_applications SET hospital_id = $1, stage = $2, updated_at = $3 WHERE id = $4`,
		hospital.ID, app.Stage, now, app.ID,
	); err != nil {
		s.logger.Error("failed to link hospital to application", map[string]interface{}{
			"error":         err,
			"applicationId": app.ID,
		})
	}

	s.audit(ctx, app.ID, "HOSPITAL_ACTIVATED", "system",
		fmt.Sprintf("hospital %s activated from contract %s", hospital.ID, contractID))

	s.notifier.OnboardingComplete(ctx, app, hospital)
	s.mirrorToIndex(ctx, app)

	return hospital, nil
}

func (s *Service) findHospitalByApplication(ctx context.Context, applicationID string) (*models.Hospital, error) {
	var h models.Hospital
	var contractID sql.NullString
	var activatedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, application_id, contract_id, name, facility_type, address, city, state,
		        contact_email, contact_phone, bed_capacity, is_active, activated_at, created_at
		 FROM hospitals WHERE application_id = $1`,
		applicationID,
	).Scan(
		&h.ID, &h.ApplicationID, &contractID, &h.Name, &h.FacilityType,
		&h.Address, &h.City, &h.State, &h.ContactEmail, &h.ContactPhone,
		&h.BedCapacity, &h.IsActive, &activatedAt, &h.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load hospital: %w", err))
	}
	h.ContractID = contractID.String
	if activatedAt.Valid {
		h.ActivatedAt = &activatedAt.Time
	}
	return &h, nil
}

// audit records an audit trail row. Failures are logged, never fatal.
func (s *Service) audit(ctx context.Context, applicationID, action, actor, details string) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, application_id, action, actor, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(), applicationID, action, actor, details, time.Now().UTC(),
	)
	if err != nil {
		s.logger.Error("audit log insert failed", map[string]interface{}{
			"error":  err,
			"action": action,
		})
	}
}

// mirrorToIndex mirrors the application into the search index, logging failures.
func (s *Service) mirrorToIndex(ctx context.Context, app *models.Application) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexApplication(ctx, app); err != nil {
		s.logger.Warn("search indexing failed", map[string]interface{}{
			"error":         err,
			"applicationId": app.ID,
		})
	}
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
