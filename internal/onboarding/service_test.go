package onboarding

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/common/config"
	"hospital-onboarding/internal/common/logger"
	"hospital-onboarding/internal/evaluation"
	"hospital-onboarding/internal/models"
)

type fakeNotifier struct {
	submitted []string
	updates   []string
	completed []string
}

func (f *fakeNotifier) ApplicationSubmitted(_ context.Context, app *models.Application) {
	f.submitted = append(f.submitted, app.ApplicationNumber)
}

func (f *fakeNotifier) StatusUpdate(_ context.Context, app *models.Application, _ models.ApplicationStatus) {
	f.updates = append(f.updates, string(app.Status))
}

func (f *fakeNotifier) OnboardingComplete(_ context.Context, _ *models.Application, h *models.Hospital) {
	f.completed = append(f.completed, h.ID)
}

type fakeIndexer struct {
	indexed []string
}

func (f *fakeIndexer) IndexApplication(_ context.Context, app *models.Application) error {
	f.indexed = append(f.indexed, app.ID)
	return nil
}

func testEngine() *evaluation.Engine {
	return evaluation.NewEngine(config.EvaluationConfig{
		Weights: config.WeightsConfig{
			Facility: 0.15, Staffing: 0.15, Equipment: 0.15, Compliance: 0.20,
			Financial: 0.10, Location: 0.10, Services: 0.10, Reputation: 0.05,
		},
		ApproveThreshold: 70,
		RejectThreshold:  50,
	})
}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *fakeNotifier, *fakeIndexer) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	notifier := &fakeNotifier{}
	indexer := &fakeIndexer{}
	svc := NewService(db, testEngine(), notifier, indexer, logger.NewTestLogger(t))
	return svc, mock, notifier, indexer
}

func validApplication() *models.Application {
	return &models.Application{
		HospitalName:   "Sunrise Teaching Hospital",
		FacilityType:   "GENERAL_HOSPITAL",
		OwnerFirstName: "Amina",
		OwnerLastName:  "Bello",
		OwnerEmail:     "amina@sunrise.example.com",
		OwnerPhone:     "+2348012345678",
		Address:        "14 Hospital Road",
		City:           "Ikeja",
		State:          "Lagos",
		BedCapacity:    120,
		StaffCount:     180,
	}
}

var applicationColumnList = []string{
	"id", "application_number", "status", "stage",
	"hospital_name", "legal_name", "registration_number", "tax_id", "facility_type",
	"owner_first_name", "owner_last_name", "owner_email", "owner_phone", "owner_nin",
	"address", "city", "state", "lga", "is_rural",
	"bed_capacity", "staff_count", "doctor_count", "nurse_count",
	"has_emergency", "has_pharmacy", "has_laboratory", "has_radiology", "has_parking", "near_transit",
	"services_offered", "specializations",
	"has_insurance_partners", "has_hmo_partners", "has_government_contract",
	"years_in_operation", "estimated_revenue", "business_plan",
	"rejection_reason", "decided_by", "decided_at", "hospital_id",
	"created_at", "updated_at",
}

func applicationRow(id string, status models.ApplicationStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(applicationColumnList).AddRow(
		id, "APP-2026-08-000007", status, models.StageEvaluation,
		"Sunrise Teaching Hospital", "Sunrise Teaching Hospital Ltd", "RC-123456", "TIN-04821",
		"GENERAL_HOSPITAL",
		"Amina", "Bello", "amina@sunrise.example.com", "+2348012345678", nil,
		"14 Hospital Road", "Ikeja", "Lagos", "Ikeja", false,
		120, 180, 40, 90,
		true, true, true, false, true, false,
		"{Emergency Care}", "{Cardiology}",
		true, false, false,
		8, 60000000.0, nil,
		nil, nil, nil, nil,
		now, now,
	)
}

// scoringApplicationRow builds a fixture whose category scores are fixed by
// construction. The strong profile lands at 74.80 with the three required
// document types verified; the weak one at 13.20 with none.
func scoringApplicationRow(id string, status models.ApplicationStatus, strong bool) *sqlmock.Rows {
	now := time.Now().UTC()
	if strong {
		return sqlmock.NewRows(applicationColumnList).AddRow(
			id, "APP-2026-08-000008", status, models.StageEvaluation,
			"Sunrise Teaching Hospital", nil, nil, nil, "GENERAL_HOSPITAL",
			"Amina", "Bello", "amina@sunrise.example.com", "+2348012345678", nil,
			"14 Hospital Road", "Ikeja", "Lagos", nil, false,
			80, 120, 10, 40,
			true, true, true, true, true, false,
			"{Emergency Care,Outpatient Services,Laboratory Services,Pharmacy Services,Surgery}",
			"{Cardiology,Pediatrics}",
			true, true, false,
			8, 60000000.0, nil,
			nil, nil, nil, nil,
			now, now,
		)
	}
	return sqlmock.NewRows(applicationColumnList).AddRow(
		id, "APP-2026-08-000009", status, models.StageEvaluation,
		"Corner Clinic", nil, nil, nil, "CLINIC",
		"Amina", "Bello", "amina@sunrise.example.com", "+2348012345678", nil,
		"14 Hospital Road", "Ikeja", "Lagos", nil, false,
		8, 0, 0, 0,
		false, false, false, false, false, false,
		"{}", "{}",
		false, false, false,
		0, 0.0, nil,
		nil, nil, nil, nil,
		now, now,
	)
}

func TestSubmitRejectsInvalidApplication(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	app := validApplication()
	app.OwnerPhone = "12345"

	_, err := svc.Submit(context.Background(), app)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSubmitConflictsOnActiveApplication(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT application_number FROM hospital_applications`).
		WithArgs("amina@sunrise.example.com").
		WillReturnRows(sqlmock.NewRows([]string{"application_number"}).AddRow("APP-2026-07-000003"))

	_, err := svc.Submit(context.Background(), validApplication())
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitCreatesApplicationAndChecklist(t *testing.T) {
	svc, mock, notifier, indexer := newTestService(t)

	mock.ExpectQuery(`SELECT application_number FROM hospital_applications`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO sequence_counters`).
		WithArgs("APPLICATION", time.Now().UTC().Format("2006-01")).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(42))
	mock.ExpectExec(`INSERT INTO hospital_applications`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for range models.DefaultChecklistTemplate {
		mock.ExpectExec(`INSERT INTO checklist_items`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	app, err := svc.Submit(context.Background(), validApplication())
	require.NoError(t, err)

	assert.Equal(t, models.StatusSubmitted, app.Status)
	assert.Regexp(t, `^APP-\d{4}-\d{2}-000042$`, app.ApplicationNumber)
	assert.Equal(t, []string{app.ApplicationNumber}, notifier.submitted)
	assert.Equal(t, []string{app.ID}, indexer.indexed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusApproved))

	_, err := svc.UpdateStatus(context.Background(), "app-1", models.StatusSubmitted, "admin", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}

func TestUpdateStatusRequiresRejectionReason(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusUnderReview))

	_, err := svc.UpdateStatus(context.Background(), "app-1", models.StatusRejected, "admin", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdateStatusApprovesAndStampsDecider(t *testing.T) {
	svc, mock, notifier, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusUnderReview))
	mock.ExpectExec(`UPDATE hospital_applications`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	app, err := svc.UpdateStatus(context.Background(), "app-1", models.StatusApproved, "reviewer@ops", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, app.Status)
	assert.Equal(t, models.StageContractNegotiation, app.Stage)
	assert.Equal(t, "reviewer@ops", app.DecidedBy)
	require.NotNil(t, app.DecidedAt)
	assert.Equal(t, []string{"APPROVED"}, notifier.updates)
}

func TestUpdateStatusDetectsConcurrentChange(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusUnderReview))
	mock.ExpectExec(`UPDATE hospital_applications`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.UpdateStatus(context.Background(), "app-1", models.StatusApproved, "admin", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestEvaluateManualRequiresOpenApplication(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusApproved))

	_, err := svc.EvaluateManual(context.Background(), "app-1",
		models.CategoryScores{Facility: 80}, "", "reviewer")
	require.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}

func TestEvaluateManualRecordsWithoutTransition(t *testing.T) {
	svc, mock, notifier, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusUnderReview))
	mock.ExpectExec(`INSERT INTO evaluation_scores`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	scores := models.CategoryScores{
		Facility: 90, Staffing: 90, Equipment: 90, Compliance: 90,
		Financial: 90, Location: 90, Services: 90, Reputation: 90,
	}
	eval, err := svc.EvaluateManual(context.Background(), "app-1", scores, "solid applicant", "reviewer")
	require.NoError(t, err)

	assert.Equal(t, models.EvaluationManual, eval.Type)
	assert.InDelta(t, 90.0, eval.TotalScore, 0.001)
	assert.Equal(t, models.RecommendApprove, eval.Recommendation)
	assert.Empty(t, notifier.updates, "manual evaluations never transition the application")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateManualValidatesScoreRange(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.EvaluateManual(context.Background(), "app-1",
		models.CategoryScores{Facility: 140}, "", "reviewer")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPromoteToHospitalIsIdempotent(t *testing.T) {
	svc, mock, notifier, _ := newTestService(t)

	now := time.Now().UTC()
	hospitalCols := []string{
		"id", "application_id", "contract_id", "name", "facility_type", "address",
		"city", "state", "contact_email", "contact_phone", "bed_capacity",
		"is_active", "activated_at", "created_at",
	}

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusApproved))
	mock.ExpectQuery(`SELECT (.+) FROM hospitals WHERE application_id`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(hospitalCols).AddRow(
			"hosp-1", "app-1", "con-1", "Sunrise Teaching Hospital", "GENERAL_HOSPITAL",
			"14 Hospital Road", "Ikeja", "Lagos", "amina@sunrise.example.com",
			"+2348012345678", 120, true, now, now,
		))

	hospital, err := svc.PromoteToHospital(context.Background(), "app-1", "con-1")
	require.NoError(t, err)

	assert.Equal(t, "hosp-1", hospital.ID)
	assert.Empty(t, notifier.completed, "existing hospitals are not re-announced")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteToHospitalRequiresApproval(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusUnderReview))

	_, err := svc.PromoteToHospital(context.Background(), "app-1", "con-1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}

var hospitalColumnList = []string{
	"id", "application_id", "contract_id", "name", "facility_type", "address",
	"city", "state", "contact_email", "contact_phone", "bed_capacity",
	"is_active", "activated_at", "created_at",
}

func hospitalShellRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(hospitalColumnList).AddRow(
		"hosp-1", "app-1", nil, "Sunrise Teaching Hospital", "GENERAL_HOSPITAL",
		"14 Hospital Road", "Ikeja", "Lagos", "amina@sunrise.example.com",
		"+2348012345678", 120, false, nil, now,
	)
}

func TestGetApplicationReadsProfileFields(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusSubmitted))

	app, err := svc.GetApplication(context.Background(), "app-1")
	require.NoError(t, err)

	assert.Equal(t, "Sunrise Teaching Hospital Ltd", app.LegalName)
	assert.Equal(t, "RC-123456", app.RegistrationNumber)
	assert.Equal(t, "TIN-04821", app.TaxID)
	assert.Equal(t, "Ikeja", app.LGA)
}

func TestEnsureHospitalShellCreatesInactiveHospital(t *testing.T) {
	svc, mock, notifier, _ := newTestService(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusApproved))
	mock.ExpectQuery(`SELECT (.+) FROM hospitals WHERE application_id`).
		WithArgs("app-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO hospitals`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM hospitals WHERE application_id`).
		WithArgs("app-1").
		WillReturnRows(hospitalShellRow(now))
	mock.ExpectExec(`UPDATE hospital_applications SET hospital_id`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	hospital, err := svc.EnsureHospitalShell(context.Background(), "app-1")
	require.NoError(t, err)

	assert.Equal(t, "hosp-1", hospital.ID)
	assert.False(t, hospital.IsActive, "the shell stays inactive until the contract is signed")
	assert.Nil(t, hospital.ActivatedAt)
	assert.Empty(t, notifier.completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureHospitalShellReturnsExisting(t *testing.T) {
	svc, mock, _, _ := newTestService(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusApproved))
	mock.ExpectQuery(`SELECT (.+) FROM hospitals WHERE application_id`).
		WithArgs("app-1").
		WillReturnRows(hospitalShellRow(now))

	hospital, err := svc.EnsureHospitalShell(context.Background(), "app-1")
	require.NoError(t, err)

	assert.Equal(t, "hosp-1", hospital.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteToHospitalActivatesShell(t *testing.T) {
	svc, mock, notifier, _ := newTestService(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusApproved))
	mock.ExpectQuery(`SELECT (.+) FROM hospitals WHERE application_id`).
		WithArgs("app-1").
		WillReturnRows(hospitalShellRow(now))
	mock.ExpectExec(`UPDATE hospitals SET is_active = true`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE hospital_applications SET hospital_id`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	hospital, err := svc.PromoteToHospital(context.Background(), "app-1", "con-1")
	require.NoError(t, err)

	assert.True(t, hospital.IsActive)
	assert.Equal(t, "con-1", hospital.ContractID)
	require.NotNil(t, hospital.ActivatedAt)
	assert.Equal(t, []string{"hosp-1"}, notifier.completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteToHospitalLosesActivationRace(t *testing.T) {
	svc, mock, notifier, _ := newTestService(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(applicationRow("app-1", models.StatusApproved))
	mock.ExpectQuery(`SELECT (.+) FROM hospitals WHERE application_id`).
		WithArgs("app-1").
		WillReturnRows(hospitalShellRow(now))
	mock.ExpectExec(`UPDATE hospitals SET is_active = true`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM hospitals WHERE application_id`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(hospitalColumnList).AddRow(
			"hosp-1", "app-1", "con-1", "Sunrise Teaching Hospital", "GENERAL_HOSPITAL",
			"14 Hospital Road", "Ikeja", "Lagos", "amina@sunrise.example.com",
			"+2348012345678", 120, true, now, now,
		))

	hospital, err := svc.PromoteToHospital(context.Background(), "app-1", "con-1")
	require.NoError(t, err)

	assert.True(t, hospital.IsActive)
	assert.Empty(t, notifier.completed, "the winning promotion already announced it")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateAutoApprovesStrongApplication(t *testing.T) {
	svc, mock, notifier, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(scoringApplicationRow("app-1", models.StatusSubmitted, true))
	mock.ExpectQuery(`SELECT type FROM documents`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"type"}).
			AddRow("LICENSE").AddRow("REGISTRATION").AddRow("TAX_CERTIFICATE"))
	mock.ExpectExec(`INSERT INTO evaluation_scores`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Parked under review first, then approved off the recommendation.
	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(scoringApplicationRow("app-1", models.StatusSubmitted, true))
	mock.ExpectExec(`UPDATE hospital_applications`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(scoringApplicationRow("app-1", models.StatusUnderReview, true))
	mock.ExpectExec(`UPDATE hospital_applications`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	eval, err := svc.EvaluateAuto(context.Background(), "app-1", "auto")
	require.NoError(t, err)

	assert.Equal(t, models.EvaluationAutomatic, eval.Type)
	assert.InDelta(t, 74.80, eval.TotalScore, 0.001)
	assert.Equal(t, models.RecommendApprove, eval.Recommendation)
	assert.Equal(t, []string{"UNDER_REVIEW", "APPROVED"}, notifier.updates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateAutoRejectsWeakApplication(t *testing.T) {
	svc, mock, notifier, _ := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(scoringApplicationRow("app-1", models.StatusSubmitted, false))
	mock.ExpectQuery(`SELECT type FROM documents`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"type"}))
	mock.ExpectExec(`INSERT INTO evaluation_scores`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(scoringApplicationRow("app-1", models.StatusSubmitted, false))
	mock.ExpectExec(`UPDATE hospital_applications`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM hospital_applications WHERE id`).
		WithArgs("app-1").
		WillReturnRows(scoringApplicationRow("app-1", models.StatusUnderReview, false))
	mock.ExpectExec(`UPDATE hospital_applications`).
		WithArgs("REJECTED", sqlmock.AnyArg(),
			"automatic evaluation scored 13.20, below the acceptance threshold",
			"auto", sqlmock.AnyArg(), sqlmock.AnyArg(), "app-1", "UNDER_REVIEW").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	eval, err := svc.EvaluateAuto(context.Background(), "app-1", "auto")
	require.NoError(t, err)

	assert.InDelta(t, 13.20, eval.TotalScore, 0.001)
	assert.Equal(t, models.RecommendReject, eval.Recommendation)
	assert.Equal(t, []string{"UNDER_REVIEW", "REJECTED"}, notifier.updates)
	assert.NoError(t, mock.ExpectationsWereMet())
}
