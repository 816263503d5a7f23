package models

import "time"

// ChecklistCategory groups checklist items for presentation.
type ChecklistCategory string

const (
	ChecklistDocuments    ChecklistCategory = "DOCUMENTS"
	ChecklistVerification ChecklistCategory = "VERIFICATION"
	ChecklistContract     ChecklistCategory = "CONTRACT"
	ChecklistSetup        ChecklistCategory = "SETUP"
)

// ChecklistItem is one task in an application's onboarding checklist.
type ChecklistItem struct {
	ID            string            `json:"id"`
	ApplicationID string            `json:"applicationId"`
	Category      ChecklistCategory `json:"category"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	IsRequired    bool              `json:"isRequired"`
	OrderIndex    int               `json:"orderIndex"`
	Completed     bool              `json:"completed"`
	CompletedBy   string            `json:"completedBy,omitempty"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
}

// ChecklistTemplateItem seeds a new application's checklist.
type ChecklistTemplateItem struct {
	Category    ChecklistCategory
	Title       string
	Description string
	IsRequired  bool
	OrderIndex  int
}

// DefaultChecklistTemplate is the seed applied on submission.
var DefaultChecklistTemplate = []ChecklistTemplateItem{
	{ChecklistDocuments, "Upload operating license", "Valid state operating license for the facility", true, 1},
	{ChecklistDocuments, "Upload CAC registration", "Corporate Affairs Commission registration certificate", true, 2},
	{ChecklistDocuments, "Upload tax certificate", "Current tax clearance certificate", true, 3},
	{ChecklistDocuments, "Upload insurance certificate", "Professional indemnity or facility insurance", false, 4},
	{ChecklistDocuments, "Upload facility photos", "Photos of wards, reception and equipment", false, 5},
	{ChecklistVerification, "Verify submitted documents", "Reviewer confirms authenticity of uploads", true, 6},
	{ChecklistVerification, "Complete evaluation", "Automatic or manual evaluation recorded", true, 7},
	{ChecklistContract, "Generate partnership contract", "Contract drafted from the approved application", true, 8},
	{ChecklistContract, "Collect both signatures", "Hospital and operator signatures recorded", true, 9},
	{ChecklistSetup, "Provision hospital account", "Active hospital record created", true, 10},
	{ChecklistSetup, "Schedule staff training", "Onboarding training session booked", false, 11},
	{ChecklistSetup, "Confirm go-live", "Facility confirmed live on the platform", false, 12},
}
