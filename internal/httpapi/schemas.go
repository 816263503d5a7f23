package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"hospital-onboarding/internal/common/apperr"
)

// Request bodies are checked against a JSON schema before decoding, so
// structural problems surface as one validation error instead of a partial
// decode. Business rules stay in the services.

const submitApplicationSchema = `{
	"type": "object",
	"required": ["hospitalName", "facilityType", "ownerFirstName", "ownerLastName",
		"ownerEmail", "ownerPhone", "address", "city", "state", "bedCapacity"],
	"properties": {
		"hospitalName":       {"type": "string", "minLength": 3, "maxLength": 200},
		"legalName":          {"type": "string", "minLength": 3, "maxLength": 200},
		"registrationNumber": {"type": "string", "maxLength": 100},
		"taxId":              {"type": "string", "maxLength": 100},
		"facilityType":   {"type": "string", "minLength": 1},
		"ownerFirstName": {"type": "string", "minLength": 1},
		"ownerLastName":  {"type": "string", "minLength": 1},
		"ownerEmail":     {"type": "string", "format": "email"},
		"ownerPhone":     {"type": "string", "minLength": 10},
		"address":        {"type": "string", "minLength": 5},
		"city":           {"type": "string", "minLength": 2},
		"state":          {"type": "string", "minLength": 2},
		"lga":            {"type": "string", "maxLength": 100},
		"businessPlan":   {"type": "string", "maxLength": 10000},
		"bedCapacity":    {"type": "integer", "minimum": 1},
		"staffCount":     {"type": "integer", "minimum": 0},
		"doctorCount":    {"type": "integer", "minimum": 0},
		"nurseCount":     {"type": "integer", "minimum": 0},
		"servicesOffered": {"type": "array", "items": {"type": "string"}},
		"specializations": {"type": "array", "items": {"type": "string"}},
		"estimatedRevenue": {"type": "number", "minimum": 0}
	}
}`

const updateStatusSchema = `{
	"type": "object",
	"required": ["status"],
	"properties": {
		"status": {"type": "string", "enum":
			["SUBMITTED", "UNDER_REVIEW", "APPROVED", "REJECTED", "WITHDRAWN"]},
		"reason": {"type": "string", "maxLength": 2000}
	}
}`

const manualEvaluationSchema = `{
	"type": "object",
	"required": ["scores"],
	"properties": {
		"scores": {
			"type": "object",
			"required": ["facility", "staffing", "equipment", "compliance",
				"financial", "location", "services", "reputation"],
			"additionalProperties": {"type": "number", "minimum": 0, "maximum": 100}
		},
		"comments": {"type": "string", "maxLength": 5000}
	}
}`

const generateContractSchema = `{
	"type": "object",
	"required": ["applicationId"],
	"properties": {
		"applicationId":          {"type": "string", "minLength": 1},
		"title":                  {"type": "string", "maxLength": 300},
		"startDate":              {"type": "string", "format": "date-time"},
		"endDate":                {"type": "string", "format": "date-time"},
		"commissionRate":         {"type": "number", "minimum": 0, "maximum": 100},
		"revenueSharePercentage": {"type": "number", "minimum": 0, "maximum": 100},
		"setupFee":               {"type": "number", "minimum": 0},
		"monthlyFee":             {"type": "number", "minimum": 0},
		"durationMonths":      {"type": "integer", "minimum": 0, "maximum": 120},
		"autoRenew":           {"type": "boolean"},
		"renewalPeriodMonths": {"type": "integer", "minimum": 0, "maximum": 60},
		"paymentTerms":        {"type": "string", "maxLength": 100},
		"specialClauses":      {"type": "string", "maxLength": 5000}
	}
}`

const signContractSchema = `{
	"type": "object",
	"required": ["name", "email"],
	"properties": {
		"name":          {"type": "string", "minLength": 2, "maxLength": 200},
		"email":         {"type": "string", "format": "email"},
		"title":         {"type": "string", "maxLength": 200},
		"signatureData": {"type": "string", "maxLength": 500000}
	}
}`

var compiledSchemas = map[string]*gojsonschema.Schema{}

func init() {
	for name, raw := range map[string]string{
		"submitApplication": submitApplicationSchema,
		"updateStatus":      updateStatusSchema,
		"manualEvaluation":  manualEvaluationSchema,
		"generateContract":  generateContractSchema,
		"signContract":      signContractSchema,
	} {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			panic("invalid request schema " + name + ": " + err.Error())
		}
		compiledSchemas[name] = schema
	}
}

// decodeValidated reads the body, validates it against the named schema and
// decodes it into dst.
func decodeValidated(r *http.Request, schemaName string, dst interface{}) error {
	schema, ok := compiledSchemas[schemaName]
	if !ok {
		panic("unknown request schema " + schemaName)
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperr.Validation("unable to read request body", err.Error())
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return apperr.Validation("request body is required", "")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperr.Validation("request body is not valid JSON", err.Error())
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		sort.Strings(issues)
		return apperr.Validation("request body failed validation", strings.Join(issues, "; "))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Validation("unable to decode request body", err.Error())
	}
	return nil
}
