package models

import "time"

// ApplicationStatus is the lifecycle state of an onboarding application.
type ApplicationStatus string

const (
	StatusDraft       ApplicationStatus = "DRAFT"
	StatusSubmitted   ApplicationStatus = "SUBMITTED"
	StatusUnderReview ApplicationStatus = "UNDER_REVIEW"
	StatusApproved    ApplicationStatus = "APPROVED"
	StatusRejected    ApplicationStatus = "REJECTED"
	StatusWithdrawn   ApplicationStatus = "WITHDRAWN"
)

// IsTerminal reports whether no further transitions are allowed.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusWithdrawn
}

// allowedTransitions is the application state machine. Approved applications
// stay APPROVED; the contract flow takes over from there.
var allowedTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusUnderReview, StatusWithdrawn},
	StatusUnderReview: {StatusApproved, StatusRejected, StatusWithdrawn},
}

// CanTransition reports whether moving from s to next is a legal transition.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	for _, t := range allowedTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Application is a hospital partner onboarding application. The facility,
// staffing, service and financial fields feed the scoring engine.
type Application struct {
	ID                string            `json:"id"`
	ApplicationNumber string            `json:"applicationNumber"`
	Status            ApplicationStatus `json:"status"`
	Stage             Stage             `json:"stage"`

	HospitalName       string `json:"hospitalName"`
	LegalName          string `json:"legalName,omitempty"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	TaxID              string `json:"taxId,omitempty"`
	FacilityType       string `json:"facilityType"`

	OwnerFirstName string `json:"ownerFirstName"`
	OwnerLastName  string `json:"ownerLastName"`
	OwnerEmail     string `json:"ownerEmail"`
	OwnerPhone     string `json:"ownerPhone"`
	OwnerNIN       string `json:"ownerNin,omitempty"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	LGA     string `json:"lga,omitempty"`
	IsRural bool   `json:"isRural"`

	BedCapacity int `json:"bedCapacity"`
	StaffCount  int `json:"staffCount"`
	DoctorCount int `json:"doctorCount"`
	NurseCount  int `json:"nurseCount"`

	HasEmergency  bool `json:"hasEmergency"`
	HasPharmacy   bool `json:"hasPharmacy"`
	HasLaboratory bool `json:"hasLaboratory"`
	HasRadiology  bool `json:"hasRadiology"`
	HasParking    bool `json:"hasParking"`
	NearTransit   bool `json:"nearTransit"`

	ServicesOffered []string `json:"servicesOffered"`
	Specializations []string `json:"specializations"`

	HasInsurancePartners  bool    `json:"hasInsurancePartners"`
	HasHMOPartners        bool    `json:"hasHmoPartners"`
	HasGovernmentContract bool    `json:"hasGovernmentContract"`
	YearsInOperation      int     `json:"yearsInOperation"`
	EstimatedRevenue      float64 `json:"estimatedRevenue"`

	BusinessPlan string `json:"businessPlan,omitempty"`

	RejectionReason string     `json:"rejectionReason,omitempty"`
	DecidedBy       string     `json:"decidedBy,omitempty"`
	DecidedAt       *time.Time `json:"decidedAt,omitempty"`

	HospitalID string `json:"hospitalId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StaffPerBedRatio returns staff count over bed capacity, zero-safe.
func (a *Application) StaffPerBedRatio() float64 {
	if a.BedCapacity == 0 {
		return 0
	}
	return float64(a.StaffCount) / float64(a.BedCapacity)
}
