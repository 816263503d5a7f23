// Package progress projects an application's onboarding state onto a fixed
// sequence of steps. The projection is pure and derives everything from the
// snapshot passed in.
package progress

import (
	"hospital-onboarding/internal/models"
)

// Snapshot is the minimal state needed to compute progress.
type Snapshot struct {
	Application     *models.Application
	DocumentCount   int
	EvaluationCount int
	Contract        *models.Contract
	HospitalExists  bool
}

// Step is one milestone in the onboarding pipeline.
type Step struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Report is the progress view returned to applicants.
type Report struct {
	ApplicationNumber string                   `json:"applicationNumber"`
	Status            models.ApplicationStatus `json:"status"`
	Stage             models.Stage             `json:"stage"`
	Percent           int                      `json:"percent"`
	Steps             []Step                   `json:"steps"`
}

// RequiredDocumentCount is how many uploads the documents step needs before
// it counts as complete.
var RequiredDocumentCount = len(models.RequiredDocumentTypes)

// Project computes the progress report for a snapshot. Steps complete in
// order; percent is the completed share of the step list. The stage carries
// its own display checkpoint but never feeds the percentage.
func Project(s Snapshot) Report {
	app := s.Application

	submitted := app.Status != models.StatusDraft
	docsUploaded := submitted && s.DocumentCount >= RequiredDocumentCount
	evaluated := submitted && s.EvaluationCount > 0
	contractGenerated := s.Contract != nil
	contractSigned := s.Contract != nil &&
		(s.Contract.Status == models.ContractSigned || s.Contract.Status == models.ContractActive)
	complete := s.HospitalExists

	steps := []Step{
		{"applicationSubmitted", submitted},
		{"documentsUploaded", docsUploaded},
		{"evaluationCompleted", evaluated},
		{"contractGenerated", contractGenerated},
		{"contractSigned", contractSigned},
		{"onboardingComplete", complete},
	}

	completed := 0
	for _, step := range steps {
		if step.Completed {
			completed++
		}
	}

	return Report{
		ApplicationNumber: app.ApplicationNumber,
		Status:            app.Status,
		Stage:             deriveStage(steps, s),
		Percent:           completed * 100 / len(steps),
		Steps:             steps,
	}
}

func deriveStage(steps []Step, s Snapshot) models.Stage {
	switch {
	case s.HospitalExists:
		return models.StageCompleted
	case steps[4].Completed:
		return models.StageSystemSetup
	case steps[3].Completed:
		return models.StageContractSigning
	case s.Application.Status == models.StatusApproved:
		return models.StageContractNegotiation
	case steps[2].Completed:
		return models.StageEvaluation
	case steps[1].Completed:
		return models.StageDocumentSubmission
	default:
		return models.StageApplication
	}
}
