package models

import "time"

// Hospital is the facility record behind an application. It starts as an
// inactive shell when the contract is generated and flips active once the
// contract is fully signed.
type Hospital struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"applicationId"`
	ContractID    string     `json:"contractId,omitempty"`
	Name          string     `json:"name"`
	FacilityType  string     `json:"facilityType"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	ContactEmail  string     `json:"contactEmail"`
	ContactPhone  string     `json:"contactPhone"`
	BedCapacity   int        `json:"bedCapacity"`
	IsActive      bool       `json:"isActive"`
	ActivatedAt   *time.Time `json:"activatedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}
