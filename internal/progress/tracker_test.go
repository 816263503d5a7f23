package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-onboarding/internal/models"
)

func TestProjectAdvancesMonotonically(t *testing.T) {
	app := &models.Application{ApplicationNumber: "APP-2026-08-000001", Status: models.StatusSubmitted}
	contract := &models.Contract{Status: models.ContractDraft}

	snapshots := []Snapshot{
		{Application: app},
		{Application: app, DocumentCount: 3},
		{Application: app, DocumentCount: 3, EvaluationCount: 1},
		{Application: &models.Application{Status: models.StatusApproved}, DocumentCount: 3, EvaluationCount: 1},
		{Application: &models.Application{Status: models.StatusApproved}, DocumentCount: 3, EvaluationCount: 1, Contract: contract},
		{Application: &models.Application{Status: models.StatusApproved}, DocumentCount: 3, EvaluationCount: 1,
			Contract: &models.Contract{Status: models.ContractActive}},
		{Application: &models.Application{Status: models.StatusApproved}, DocumentCount: 3, EvaluationCount: 1,
			Contract: &models.Contract{Status: models.ContractActive}, HospitalExists: true},
	}

	lastPercent := -1
	lastCompleted := -1
	for i, s := range snapshots {
		report := Project(s)

		completed := 0
		for _, step := range report.Steps {
			if step.Completed {
				completed++
			}
		}

		assert.GreaterOrEqual(t, report.Percent, lastPercent, "snapshot %d", i)
		assert.GreaterOrEqual(t, completed, lastCompleted, "snapshot %d", i)
		lastPercent = report.Percent
		lastCompleted = completed
	}
}

func TestProjectDraftApplication(t *testing.T) {
	report := Project(Snapshot{
		Application: &models.Application{Status: models.StatusDraft},
	})

	assert.Equal(t, models.StageApplication, report.Stage)
	for _, step := range report.Steps {
		assert.False(t, step.Completed, step.Name)
	}
}

func TestProjectCompletedOnboarding(t *testing.T) {
	report := Project(Snapshot{
		Application:     &models.Application{Status: models.StatusApproved},
		DocumentCount:   5,
		EvaluationCount: 2,
		Contract:        &models.Contract{Status: models.ContractActive},
		HospitalExists:  true,
	})

	require.Equal(t, models.StageCompleted, report.Stage)
	assert.Equal(t, 100, report.Percent)
	for _, step := range report.Steps {
		assert.True(t, step.Completed, step.Name)
	}
}

func TestProjectStepsCompleteInOrder(t *testing.T) {
	report := Project(Snapshot{
		Application:     &models.Application{Status: models.StatusUnderReview},
		DocumentCount:   3,
		EvaluationCount: 1,
	})

	seenIncomplete := false
	for _, step := range report.Steps {
		if !step.Completed {
			seenIncomplete = true
		}
		if seenIncomplete {
			assert.False(t, step.Completed, step.Name)
		}
	}
	assert.Equal(t, models.StageEvaluation, report.Stage)
}

func TestProjectPercentIsCompletedStepShare(t *testing.T) {
	report := Project(Snapshot{
		Application: &models.Application{Status: models.StatusSubmitted},
	})

	assert.Equal(t, 16, report.Percent)

	report = Project(Snapshot{
		Application:     &models.Application{Status: models.StatusUnderReview},
		DocumentCount:   3,
		EvaluationCount: 1,
	})
	assert.Equal(t, 50, report.Percent)
}

func TestProjectDocumentsStepNeedsRequiredCount(t *testing.T) {
	report := Project(Snapshot{
		Application:   &models.Application{Status: models.StatusSubmitted},
		DocumentCount: 1,
	})

	for _, step := range report.Steps {
		if step.Name == "documentsUploaded" {
			assert.False(t, step.Completed)
		}
	}

	report = Project(Snapshot{
		Application:   &models.Application{Status: models.StatusSubmitted},
		DocumentCount: RequiredDocumentCount,
	})
	for _, step := range report.Steps {
		if step.Name == "documentsUploaded" {
			assert.True(t, step.Completed)
		}
	}
}
