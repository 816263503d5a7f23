package contracts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/common/logger"
	"hospital-onboarding/internal/common/metrics"
	"hospital-onboarding/internal/docstore"
	"hospital-onboarding/internal/models"
	"hospital-onboarding/internal/onboarding"
	"hospital-onboarding/internal/validation"
)

// ApplicationSource resolves applications; satisfied by the onboarding
// service.
type ApplicationSource interface {
	GetApplication(ctx context.Context, id string) (*models.Application, error)
}

// Promoter manages the hospital record behind a contract: the inactive shell
// created at generation and its activation once the contract is fully signed.
type Promoter interface {
	EnsureHospitalShell(ctx context.Context, applicationID string) (*models.Hospital, error)
	PromoteToHospital(ctx context.Context, applicationID, contractID string) (*models.Hospital, error)
}

// Notifier delivers the contract to the hospital side.
type Notifier interface {
	ContractForSigning(ctx context.Context, app *models.Application, contract *models.Contract)
}

// SnapshotStore persists rendered contract documents.
type SnapshotStore interface {
	SaveRendered(subdir, fileName string, content []byte) (*docstore.SaveResult, error)
}

// Service runs the contract lifecycle.
type Service struct {
	db        *sql.DB
	apps      ApplicationSource
	promoter  Promoter
	notifier  Notifier
	snapshots SnapshotStore
	renderer  *Renderer
	allocator *onboarding.NumberAllocator
	logger    logger.Logger
}

func NewService(db *sql.DB, apps ApplicationSource, promoter Promoter, notifier Notifier,
	snapshots SnapshotStore, log logger.Logger) (*Service, error) {

	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Service{
		db:        db,
		apps:      apps,
		promoter:  promoter,
		notifier:  notifier,
		snapshots: snapshots,
		renderer:  renderer,
		allocator: onboarding.NewNumberAllocator(db),
		logger:    log.WithFields(map[string]interface{}{"component": "contract-service"}),
	}, nil
}

// GenerateInput carries the negotiable contract terms.
type GenerateInput struct {
	ApplicationID          string     `json:"applicationId"`
	Title                  string     `json:"title"`
	StartDate              *time.Time `json:"startDate"`
	EndDate                *time.Time `json:"endDate"`
	CommissionRate         float64    `json:"commissionRate"`
	RevenueSharePercentage float64    `json:"revenueSharePercentage"`
	SetupFee               float64    `json:"setupFee"`
	MonthlyFee             float64    `json:"monthlyFee"`
	DurationMonths         int        `json:"durationMonths"`
	AutoRenew              bool       `json:"autoRenew"`
	RenewalPeriodMonths    int        `json:"renewalPeriodMonths"`
	PaymentTerms           string     `json:"paymentTerms"`
	SpecialClauses         string     `json:"specialClauses"`
}

// Generate drafts a contract for an approved application. It ensures the
// hospital shell exists first, so the contract always has a billing
// counterpart. One contract per application; regeneration requires deleting
// the draft first.
func (s *Service) Generate(ctx context.Context, input GenerateInput) (*models.Contract, error) {
	app, err := s.apps.GetApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusApproved {
		return nil, apperr.Precondition("contracts require an approved application",
			fmt.Sprintf("status: %s", app.Status))
	}

	var existing string
	err = s.db.QueryRowContext(ctx,
		`SELECT contract_number FROM contracts WHERE application_id = $1 LIMIT 1`,
		app.ID,
	).Scan(&existing)
	if err == nil {
		return nil, apperr.Conflict("a contract already exists for this application",
			fmt.Sprintf("contract: %s", existing))
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Internal(fmt.Errorf("check existing contract: %w", err))
	}

	hospital, err := s.promoter.EnsureHospitalShell(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	number, err := s.allocator.NextContractNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	contract := &models.Contract{
		ID:                     uuid.New().String(),
		ContractNumber:         number,
		ApplicationID:          app.ID,
		HospitalID:             hospital.ID,
		Status:                 models.ContractDraft,
		Title:                  input.Title,
		CommissionRate:         input.CommissionRate,
		RevenueSharePercentage: input.RevenueSharePercentage,
		SetupFee:               input.SetupFee,
		MonthlyFee:             input.MonthlyFee,
		DurationMonths:         input.DurationMonths,
		AutoRenew:              input.AutoRenew,
		RenewalPeriodMonths:    input.RenewalPeriodMonths,
		PaymentTerms:           input.PaymentTerms,
		SpecialClauses:         input.SpecialClauses,
		Version:                1,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if input.StartDate != nil {
		contract.StartDate = input.StartDate.UTC()
	}
	if input.EndDate != nil {
		contract.EndDate = input.EndDate.UTC()
	}
	applyContractDefaults(contract, app)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contracts (
			id, contract_number, application_id, hospital_id, status, title,
			start_date, end_date,
			commission_rate, revenue_share_percentage, setup_fee, monthly_fee,
			duration_months, auto_renew, renewal_period_months,
			payment_terms, special_clauses, version, created_at, updated_at
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		contract.ID, contract.ContractNumber, contract.ApplicationID, contract.HospitalID,
		contract.Status, contract.Title,
		contract.StartDate, contract.EndDate,
		contract.CommissionRate, contract.RevenueSharePercentage,
		contract.SetupFee, contract.MonthlyFee,
		contract.DurationMonths, contract.AutoRenew, contract.RenewalPeriodMonths,
		contract.PaymentTerms, nullString(contract.SpecialClauses), contract.Version,
		contract.CreatedAt, contract.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("insert contract: %w", err))
	}

	return contract, nil
}

func applyContractDefaults(c *models.Contract, app *models.Application) {
	if c.Title == "" {
		c.Title = fmt.Sprintf("Hospital Partnership Agreement - %s", app.HospitalName)
	}
	if c.CommissionRate == 0 {
		c.CommissionRate = 10
	}
	if c.DurationMonths == 0 {
		c.DurationMonths = 24
	}
	if c.StartDate.IsZero() {
		c.StartDate = c.CreatedAt
	}
	if c.EndDate.IsZero() {
		c.EndDate = c.StartDate.AddDate(0, c.DurationMonths, 0)
	}
	if c.AutoRenew && c.RenewalPeriodMonths == 0 {
		c.RenewalPeriodMonths = 12
	}
	if c.PaymentTerms == "" {
		c.PaymentTerms = "NET_30"
	}
}

// Get loads one contract.
func (s *Service) Get(ctx context.Context, id string) (*models.Contract, error) {
	contract, err := scanContract(s.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("contract", id)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load contract: %w", err))
	}
	return contract, nil
}

// Send renders the durable contract snapshot, stores it and emails the
// hospital side. Only drafts can be sent.
func (s *Service) Send(ctx context.Context, id string) (*models.Contract, error) {
	contract, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Status != models.ContractDraft {
		return nil, apperr.Precondition("only draft contracts can be sent",
			fmt.Sprintf("status: %s", contract.Status))
	}

	app, err := s.apps.GetApplication(ctx, contract.ApplicationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rendered, err := s.renderer.Render(contract, app, now)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	saved, err := s.snapshots.SaveRendered("contracts", contract.ContractNumber+".txt", rendered)
	if err != nil {
		return nil, err
	}

	contract.Status = models.ContractSent
	contract.DocumentURL = saved.Path
	contract.SentAt = &now
	contract.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`UPDATE contracts SET status = $1, document_url = $2, sent_at = $3, updated_at = $4 WHERE id = $5`,
		contract.Status, contract.DocumentURL, contract.SentAt, contract.UpdatedAt, contract.ID,
	)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("mark contract sent: %w", err))
	}

	s.notifier.ContractForSigning(ctx, app, contract)
	return contract, nil
}

// Sign records one party's signature inside a row-locked transaction. The
// second signature activates the contract exactly once and promotes the
// application to a hospital.
func (s *Service) Sign(ctx context.Context, id string, party models.SignatoryParty, sig models.Signature) (*models.Contract, error) {
	if err := validation.ValidateSignature(&sig); err != nil {
		return nil, apperr.Validation("invalid signature", err.Error())
	}

	var (
		contract  *models.Contract
		activated bool
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("begin sign transaction: %w", err))
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	contract, err = scanContract(tx.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("contract", id)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("lock contract: %w", err))
	}

	app, err := s.apps.GetApplication(ctx, contract.ApplicationID)
	if err != nil {
		return nil, err
	}

	// The signer's email decides the side they can sign for; the route's
	// explicit party must agree.
	resolved := models.PartyOperator
	if sig.Email == app.OwnerEmail {
		resolved = models.PartyHospital
	}
	if resolved != party {
		return nil, apperr.Forbidden("contract", fmt.Sprintf("sign as %s", party))
	}

	if contract.Status != models.ContractDraft && contract.Status != models.ContractSent &&
		contract.Status != models.ContractSigned && contract.Status != models.ContractActive {
		return nil, apperr.Precondition("contract is not open for signing",
			fmt.Sprintf("status: %s", contract.Status))
	}
	wasActive := contract.Status == models.ContractActive

	now := time.Now().UTC()
	sig.Party = party
	sig.SignedAt = now

	switch party {
	case models.PartyHospital:
		contract.HospitalSignature = &sig
	case models.PartyOperator:
		contract.OperatorSignature = &sig
	}

	// Re-signing an active contract overwrites that party's signature
	// without regressing the status or promoting again.
	if !wasActive {
		contract.Status = models.ContractSigned
		if contract.FullySigned() {
			contract.Status = models.ContractActive
			contract.ActivatedAt = &now
			activated = true
		}
	}
	contract.UpdatedAt = now

	if _, err = tx.ExecContext(ctx,
		`UPDATE contracts SET
			status = $1,
			hospital_signed_name = $2, hospital_signed_email = $3,
			hospital_signed_title = $4, hospital_signature_data = $5, hospital_signed_at = $6,
			operator_signed_name = $7, operator_signed_email = $8,
			operator_signed_title = $9, operator_signature_data = $10, operator_signed_at = $11,
			activated_at = $12, updated_at = $13
		 WHERE id = $14`,
		contract.Status,
		signatureField(contract.HospitalSignature, func(x *models.Signature) interface{} { return x.Name }),
		signatureField(contract.HospitalSignature, func(x *models.Signature) interface{} { return x.Email }),
		signatureField(contract.HospitalSignature, func(x *models.Signature) interface{} { return nullString(x.Title) }),
		signatureField(contract.HospitalSignature, func(x *models.Signature) interface{} { return nullString(x.Data) }),
		signatureField(contract.HospitalSignature, func(x *models.Signature) interface{} { return x.SignedAt }),
		signatureField(contract.OperatorSignature, func(x *models.Signature) interface{} { return x.Name }),
		signatureField(contract.OperatorSignature, func(x *models.Signature) interface{} { return x.Email }),
		signatureField(contract.OperatorSignature, func(x *models.Signature) interface{} { return nullString(x.Title) }),
		signatureField(contract.OperatorSignature, func(x *models.Signature) interface{} { return nullString(x.Data) }),
		signatureField(contract.OperatorSignature, func(x *models.Signature) interface{} { return x.SignedAt }),
		contract.ActivatedAt, contract.UpdatedAt, contract.ID,
	); err != nil {
		return nil, apperr.Internal(fmt.Errorf("record signature: %w", err))
	}

	if err = tx.Commit(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("commit sign transaction: %w", err))
	}
	tx = nil

	if activated {
		metrics.ContractsActivated.Inc()
		hospital, err := s.promoter.PromoteToHospital(ctx, contract.ApplicationID, contract.ID)
		if err != nil {
			// The contract is active; promotion retries on the next call.
			s.logger.Error("hospital promotion failed", map[string]interface{}{
				"error":      err,
				"contractId": contract.ID,
			})
		} else {
			contract.HospitalID = hospital.ID
			if _, err := s.db.ExecContext(ctx,
				`UPDATE contracts SET hospital_id = $1 WHERE id = $2`,
				hospital.ID, contract.ID,
			); err != nil {
				s.logger.Warn("failed to link hospital to contract", map[string]interface{}{"error": err})
			}
		}
	}

	return contract, nil
}

// MarkViewed stamps the first time the hospital opens the contract.
func (s *Service) MarkViewed(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE contracts SET viewed_at = $1 WHERE id = $2 AND viewed_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return apperr.Internal(fmt.Errorf("mark contract viewed: %w", err))
	}
	return nil
}

const contractColumns = `
	id, contract_number, application_id, hospital_id, status, title,
	start_date, end_date,
	commission_rate, revenue_share_percentage, setup_fee, monthly_fee,
	duration_months, auto_renew, renewal_period_months,
	payment_terms, special_clauses, version, document_url, signed_document_url,
	hospital_signed_name, hospital_signed_email, hospital_signed_title, hospital_signature_data, hospital_signed_at,
	operator_signed_name, operator_signed_email, operator_signed_title, operator_signature_data, operator_signed_at,
	sent_at, viewed_at, activated_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContract(row rowScanner) (*models.Contract, error) {
	var c models.Contract
	var hospitalID, specialClauses, documentURL, signedDocumentURL sql.NullString
	var hName, hEmail, hTitle, hData, oName, oEmail, oTitle, oData sql.NullString
	var hSignedAt, oSignedAt, sentAt, viewedAt, activatedAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.ContractNumber, &c.ApplicationID, &hospitalID, &c.Status, &c.Title,
		&c.StartDate, &c.EndDate,
		&c.CommissionRate, &c.RevenueSharePercentage, &c.SetupFee, &c.MonthlyFee,
		&c.DurationMonths, &c.AutoRenew, &c.RenewalPeriodMonths,
		&c.PaymentTerms, &specialClauses, &c.Version, &documentURL, &signedDocumentURL,
		&hName, &hEmail, &hTitle, &hData, &hSignedAt,
		&oName, &oEmail, &oTitle, &oData, &oSignedAt,
		&sentAt, &viewedAt, &activatedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.HospitalID = hospitalID.String
	c.SpecialClauses = specialClauses.String
	c.DocumentURL = documentURL.String
	c.SignedDocumentURL = signedDocumentURL.String

	if hName.Valid {
		c.HospitalSignature = &models.Signature{
			Party: models.PartyHospital,
			Name:  hName.String, Email: hEmail.String, Title: hTitle.String,
			Data:     hData.String,
			SignedAt: hSignedAt.Time,
		}
	}
	if oName.Valid {
		c.OperatorSignature = &models.Signature{
			Party: models.PartyOperator,
			Name:  oName.String, Email: oEmail.String, Title: oTitle.String,
			Data:     oData.String,
			SignedAt: oSignedAt.Time,
		}
	}
	if sentAt.Valid {
		c.SentAt = &sentAt.Time
	}
	if viewedAt.Valid {
		c.ViewedAt = &viewedAt.Time
	}
	if activatedAt.Valid {
		c.ActivatedAt = &activatedAt.Time
	}
	return &c, nil
}

func signatureField(sig *models.Signature, pick func(*models.Signature) interface{}) interface{} {
	if sig == nil {
		return nil
	}
	return pick(sig)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
