package models

import "time"

// DocumentType classifies an uploaded document.
type DocumentType string

const (
	DocumentLicense        DocumentType = "LICENSE"
	DocumentRegistration   DocumentType = "REGISTRATION"
	DocumentTaxCertificate DocumentType = "TAX_CERTIFICATE"
	DocumentInsurance      DocumentType = "INSURANCE"
	DocumentFacilityPhotos DocumentType = "FACILITY_PHOTOS"
	DocumentOther          DocumentType = "OTHER"
)

// RequiredDocumentTypes are the types counted toward compliance scoring.
// INSURANCE and FACILITY_PHOTOS are alternates for the fourth slot.
var RequiredDocumentTypes = []DocumentType{
	DocumentLicense,
	DocumentRegistration,
	DocumentTaxCertificate,
}

// Document is a file uploaded in support of an application.
type Document struct {
	ID            string       `json:"id"`
	ApplicationID string       `json:"applicationId"`
	Type          DocumentType `json:"type"`
	FileName      string       `json:"fileName"`
	ContentType   string       `json:"contentType"`
	SizeBytes     int64        `json:"sizeBytes"`
	StoragePath   string       `json:"-"`
	Checksum      string       `json:"checksum"`
	Verified      bool         `json:"verified"`
	VerifiedBy    string       `json:"verifiedBy,omitempty"`
	VerifiedAt    *time.Time   `json:"verifiedAt,omitempty"`
	UploadedAt    time.Time    `json:"uploadedAt"`
}
