package models

import "time"

// ContractStatus is the lifecycle state of a partnership contract.
type ContractStatus string

const (
	ContractDraft  ContractStatus = "DRAFT"
	ContractSent   ContractStatus = "SENT"
	ContractSigned ContractStatus = "SIGNED"
	ContractActive ContractStatus = "ACTIVE"
)

// SignatoryParty identifies which side of the contract signed.
type SignatoryParty string

const (
	PartyHospital SignatoryParty = "HOSPITAL"
	PartyOperator SignatoryParty = "OPERATOR"
)

// Signature records one party's signature on a contract. Data carries the
// captured signature image or payload as submitted.
type Signature struct {
	Party    SignatoryParty `json:"party"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Title    string         `json:"title,omitempty"`
	Data     string         `json:"signatureData,omitempty"`
	SignedAt time.Time      `json:"signedAt"`
}

// Contract is a partnership agreement generated for an approved application.
type Contract struct {
	ID             string         `json:"id"`
	ContractNumber string         `json:"contractNumber"`
	ApplicationID  string         `json:"applicationId"`
	HospitalID     string         `json:"hospitalId,omitempty"`
	Status         ContractStatus `json:"status"`
	Title          string         `json:"title"`

	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	CommissionRate         float64 `json:"commissionRate"`
	RevenueSharePercentage float64 `json:"revenueSharePercentage"`
	SetupFee               float64 `json:"setupFee"`
	MonthlyFee             float64 `json:"monthlyFee"`
	DurationMonths         int     `json:"durationMonths"`
	AutoRenew              bool    `json:"autoRenew"`
	RenewalPeriodMonths    int     `json:"renewalPeriodMonths"`
	PaymentTerms           string  `json:"paymentTerms"`
	SpecialClauses         string  `json:"specialClauses,omitempty"`
	Version                int     `json:"version"`

	DocumentURL       string `json:"documentUrl,omitempty"`
	SignedDocumentURL string `json:"signedDocumentUrl,omitempty"`

	HospitalSignature *Signature `json:"hospitalSignature,omitempty"`
	OperatorSignature *Signature `json:"operatorSignature,omitempty"`

	SentAt      *time.Time `json:"sentAt,omitempty"`
	ViewedAt    *time.Time `json:"viewedAt,omitempty"`
	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FullySigned reports whether both parties have signed.
func (c *Contract) FullySigned() bool {
	return c.HospitalSignature != nil && c.OperatorSignature != nil
}
