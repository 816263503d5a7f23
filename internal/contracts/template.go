// Package contracts manages partnership agreements: generation from an
// approved application, delivery for signing and the two-party signature
// flow that activates the hospital.
package contracts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"hospital-onboarding/internal/models"
)

// templateData is the rendering context for a contract document.
type templateData struct {
	Contract    *models.Contract
	Application *models.Application
	GeneratedAt time.Time
}

var templateFuncs = template.FuncMap{
	"ngn":     formatNGN,
	"date":    formatDate,
	"percent": formatPercent,
}

// formatNGN renders an amount as naira with thousands separators.
func formatNGN(amount float64) string {
	whole := int64(amount)
	s := fmt.Sprintf("%d", whole)

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 && r != '-' {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "NGN " + b.String()
}

func formatDate(t time.Time) string {
	return t.Format("2 January 2006")
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

const defaultContractTemplate = `HOSPITAL PARTNERSHIP AGREEMENT
{{ .Contract.ContractNumber }} (version {{ .Contract.Version }})

This agreement is made on {{ date .GeneratedAt }} between the platform
operator and {{ .Application.HospitalName }}, a {{ .Application.FacilityType }}
located at {{ .Application.Address }}, {{ .Application.City }}, {{ .Application.State }}.

1. TITLE
   {{ .Contract.Title }}

2. COMMERCIAL TERMS
   Commission rate: {{ percent .Contract.CommissionRate }} of gross platform revenue.
   Revenue share: {{ percent .Contract.RevenueSharePercentage }} of facility revenue.
   Setup fee: {{ ngn .Contract.SetupFee }} (one-time).
   Monthly fee: {{ ngn .Contract.MonthlyFee }}.
   Payment terms: {{ .Contract.PaymentTerms }}.
   Estimated annual facility revenue: {{ ngn .Application.EstimatedRevenue }}.

3. TERM
   Effective from {{ date .Contract.StartDate }} until {{ date .Contract.EndDate }}.
   Initial term of {{ .Contract.DurationMonths }} months.
{{- if .Contract.AutoRenew }}
   Renews automatically for successive {{ .Contract.RenewalPeriodMonths }}-month periods
   unless terminated with 60 days written notice.
{{- else }}
   This agreement does not renew automatically.
{{- end }}

4. FACILITY
   Hospital: {{ .Application.HospitalName }}
   Bed capacity: {{ .Application.BedCapacity }}
   Authorized signatory: {{ .Application.OwnerFirstName }} {{ .Application.OwnerLastName }} ({{ .Application.OwnerEmail }})
{{- if .Contract.SpecialClauses }}

5. SPECIAL CLAUSES
   {{ .Contract.SpecialClauses }}
{{- end }}

SIGNATURES

Hospital: ________________________    Operator: ________________________
`

// Renderer produces the durable contract document text.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("contract").Funcs(templateFuncs).Parse(defaultContractTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse contract template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render produces the contract text for the given contract and application.
func (r *Renderer) Render(contract *models.Contract, app *models.Application, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, templateData{
		Contract:    contract,
		Application: app,
		GeneratedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("render contract: %w", err)
	}
	return buf.Bytes(), nil
}
