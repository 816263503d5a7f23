package models

import "time"

// Recommendation is the outcome suggested by an evaluation score.
type Recommendation string

const (
	RecommendApprove Recommendation = "APPROVE"
	RecommendReview  Recommendation = "REVIEW"
	RecommendReject  Recommendation = "REJECT"
)

// RiskLevel grades the downside exposure of onboarding an applicant.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// EvaluationType distinguishes the automatic pre-screen from reviewer input.
type EvaluationType string

const (
	EvaluationAutomatic EvaluationType = "AUTOMATIC"
	EvaluationManual    EvaluationType = "MANUAL"
)

// CategoryScores holds the per-category raw scores, each on a 0..100 scale.
type CategoryScores struct {
	Facility   float64 `json:"facility"`
	Staffing   float64 `json:"staffing"`
	Equipment  float64 `json:"equipment"`
	Compliance float64 `json:"compliance"`
	Financial  float64 `json:"financial"`
	Location   float64 `json:"location"`
	Services   float64 `json:"services"`
	Reputation float64 `json:"reputation"`
}

// EvaluationScore is one recorded evaluation of an application.
type EvaluationScore struct {
	ID             string         `json:"id"`
	ApplicationID  string         `json:"applicationId"`
	Type           EvaluationType `json:"type"`
	Scores         CategoryScores `json:"scores"`
	TotalScore     float64        `json:"totalScore"`
	Recommendation Recommendation `json:"recommendation"`
	RiskLevel      RiskLevel      `json:"riskLevel"`
	Summary        string         `json:"summary,omitempty"`
	Comments       string         `json:"comments,omitempty"`
	EvaluatedBy    string         `json:"evaluatedBy"`
	CreatedAt      time.Time      `json:"createdAt"`
}
