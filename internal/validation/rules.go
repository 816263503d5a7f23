// Package validation holds field-level rules shared by the HTTP layer and
// services.
package validation

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"hospital-onboarding/internal/models"
)

// NigerianPhonePattern accepts +234 or 0 prefixed mobile numbers.
var NigerianPhonePattern = regexp.MustCompile(`^(\+234|0)[789]\d{9}$`)

// NigerianStates lists the 36 states plus the FCT.
var NigerianStates = []string{
	"Abia", "Adamawa", "Akwa Ibom", "Anambra", "Bauchi", "Bayelsa", "Benue",
	"Borno", "Cross River", "Delta", "Ebonyi", "Edo", "Ekiti", "Enugu",
	"FCT", "Gombe", "Imo", "Jigawa", "Kaduna", "Kano", "Katsina", "Kebbi",
	"Kogi", "Kwara", "Lagos", "Nasarawa", "Niger", "Ogun", "Ondo", "Osun",
	"Oyo", "Plateau", "Rivers", "Sokoto", "Taraba", "Yobe", "Zamfara",
}

// FacilityTypes are the accepted hospital facility classifications.
var FacilityTypes = []string{
	"GENERAL_HOSPITAL", "SPECIALIST_HOSPITAL", "TEACHING_HOSPITAL",
	"CLINIC", "MEDICAL_CENTER", "DIAGNOSTIC_CENTER", "MATERNITY_HOME",
}

func statesAsInterfaces() []interface{} {
	out := make([]interface{}, len(NigerianStates))
	for i, s := range NigerianStates {
		out[i] = s
	}
	return out
}

func facilityTypesAsInterfaces() []interface{} {
	out := make([]interface{}, len(FacilityTypes))
	for i, s := range FacilityTypes {
		out[i] = s
	}
	return out
}

// ValidateApplication checks the fields required to submit an application.
func ValidateApplication(app *models.Application) error {
	return validation.ValidateStruct(app,
		validation.Field(&app.HospitalName, validation.Required, validation.Length(3, 200)),
		validation.Field(&app.LegalName, validation.Length(3, 200)),
		validation.Field(&app.RegistrationNumber, validation.Length(2, 100)),
		validation.Field(&app.TaxID, validation.Length(2, 100)),
		validation.Field(&app.FacilityType, validation.Required,
			validation.In(facilityTypesAsInterfaces()...)),
		validation.Field(&app.OwnerFirstName, validation.Required, validation.Length(2, 100)),
		validation.Field(&app.OwnerLastName, validation.Required, validation.Length(2, 100)),
		validation.Field(&app.OwnerEmail, validation.Required, is.EmailFormat),
		validation.Field(&app.OwnerPhone, validation.Required,
			validation.Match(NigerianPhonePattern).Error("must be a valid Nigerian phone number")),
		validation.Field(&app.Address, validation.Required, validation.Length(5, 500)),
		validation.Field(&app.City, validation.Required, validation.Length(2, 100)),
		validation.Field(&app.State, validation.Required,
			validation.In(statesAsInterfaces()...).Error("must be a Nigerian state")),
		validation.Field(&app.LGA, validation.Length(2, 100)),
		validation.Field(&app.BusinessPlan, validation.Length(0, 10000)),
		validation.Field(&app.BedCapacity, validation.Required, validation.Min(1), validation.Max(10000)),
		validation.Field(&app.StaffCount, validation.Min(0), validation.Max(100000)),
		validation.Field(&app.YearsInOperation, validation.Min(0), validation.Max(200)),
		validation.Field(&app.EstimatedRevenue, validation.Min(0.0)),
	)
}

// ValidateCategoryScores checks that reviewer-entered scores stay on the
// 0..100 scale.
func ValidateCategoryScores(s models.CategoryScores) error {
	inRange := []validation.Rule{validation.Min(0.0), validation.Max(100.0)}
	return validation.ValidateStruct(&s,
		validation.Field(&s.Facility, inRange...),
		validation.Field(&s.Staffing, inRange...),
		validation.Field(&s.Equipment, inRange...),
		validation.Field(&s.Compliance, inRange...),
		validation.Field(&s.Financial, inRange...),
		validation.Field(&s.Location, inRange...),
		validation.Field(&s.Services, inRange...),
		validation.Field(&s.Reputation, inRange...),
	)
}

// ValidateSignature checks the signer fields on a contract signing request.
func ValidateSignature(sig *models.Signature) error {
	return validation.ValidateStruct(sig,
		validation.Field(&sig.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&sig.Email, validation.Required, is.EmailFormat),
	)
}
