// Package evaluation scores hospital applications. The engine is pure: the
// same application snapshot and verified document set always produce the same
// result.
package evaluation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"hospital-onboarding/internal/common/config"
	"hospital-onboarding/internal/models"
)

// Engine computes category scores, the weighted total and the resulting
// recommendation. Weights and thresholds come from configuration; weights are
// validated to sum to 1.0 at startup.
type Engine struct {
	weights          config.WeightsConfig
	approveThreshold float64
	rejectThreshold  float64
}

func NewEngine(cfg config.EvaluationConfig) *Engine {
	return &Engine{
		weights:          cfg.Weights,
		approveThreshold: cfg.ApproveThreshold,
		rejectThreshold:  cfg.RejectThreshold,
	}
}

// Result is a computed evaluation before persistence.
type Result struct {
	Scores         models.CategoryScores
	TotalScore     float64
	Recommendation models.Recommendation
	RiskLevel      models.RiskLevel
	Summary        string
}

// Evaluate runs the automatic pre-screen over an application snapshot and
// its verified documents. Missing data lowers scores, it never errors.
func (e *Engine) Evaluate(app *models.Application, verifiedDocs []models.DocumentType) Result {
	scores := models.CategoryScores{
		Facility:   facilityScore(app),
		Staffing:   staffingScore(app),
		Equipment:  equipmentScore(app),
		Compliance: complianceScore(verifiedDocs),
		Financial:  financialScore(app),
		Location:   locationScore(app),
		Services:   servicesScore(app),
		Reputation: reputationScore(),
	}
	return e.Finalize(scores)
}

// Finalize turns a set of category scores into a full result. Manual
// evaluations pass reviewer-entered scores through the same weighting.
func (e *Engine) Finalize(scores models.CategoryScores) Result {
	total := e.Total(scores)
	return Result{
		Scores:         scores,
		TotalScore:     total,
		Recommendation: e.Recommend(total),
		RiskLevel:      riskLevel(scores),
		Summary:        e.summarize(scores, total),
	}
}

// Total computes the weighted total, rounded to two decimal places.
func (e *Engine) Total(s models.CategoryScores) float64 {
	total := s.Facility*e.weights.Facility +
		s.Staffing*e.weights.Staffing +
		s.Equipment*e.weights.Equipment +
		s.Compliance*e.weights.Compliance +
		s.Financial*e.weights.Financial +
		s.Location*e.weights.Location +
		s.Services*e.weights.Services +
		s.Reputation*e.weights.Reputation
	return math.Round(total*100) / 100
}

// Recommend maps a total score to a recommendation.
func (e *Engine) Recommend(total float64) models.Recommendation {
	switch {
	case total >= e.approveThreshold:
		return models.RecommendApprove
	case total >= e.rejectThreshold:
		return models.RecommendReview
	default:
		return models.RecommendReject
	}
}

func facilityScore(app *models.Application) float64 {
	var score float64

	switch {
	case app.BedCapacity >= 200:
		score = 40
	case app.BedCapacity >= 100:
		score = 35
	case app.BedCapacity >= 50:
		score = 30
	case app.BedCapacity >= 25:
		score = 20
	case app.BedCapacity >= 10:
		score = 15
	default:
		score = 10
	}

	if app.HasEmergency {
		score += 15
	}
	if app.HasPharmacy {
		score += 15
	}
	if app.HasLaboratory {
		score += 15
	}
	if app.HasRadiology {
		score += 15
	}

	return math.Min(score, 100)
}

func staffingScore(app *models.Application) float64 {
	var score float64

	switch {
	case app.StaffCount >= 100:
		score = 30
	case app.StaffCount >= 50:
		score = 25
	case app.StaffCount >= 25:
		score = 20
	case app.StaffCount >= 10:
		score = 15
	default:
		score = 10
	}

	ratio := app.StaffPerBedRatio()
	switch {
	case ratio >= 3:
		score += 30
	case ratio >= 2:
		score += 25
	case ratio >= 1.5:
		score += 20
	case ratio >= 1:
		score += 15
	default:
		score += 10
	}

	if app.DoctorCount > 0 {
		score += 15
	}
	if app.NurseCount > 0 {
		score += 15
	}
	if len(app.Specializations) > 0 {
		score += 10
	}

	return math.Min(score, 100)
}

func equipmentScore(app *models.Application) float64 {
	var score float64
	if app.HasEmergency {
		score += 25
	}
	if app.HasPharmacy {
		score += 20
	}
	if app.HasLaboratory {
		score += 25
	}
	if app.HasRadiology {
		score += 30
	}
	return math.Min(score, 100)
}

// complianceScore rewards covering the required document set, with a small
// bonus for extra verified documents.
func complianceScore(verified []models.DocumentType) float64 {
	required := []models.DocumentType{
		models.DocumentLicense,
		models.DocumentRegistration,
		models.DocumentTaxCertificate,
		models.DocumentInsurance,
	}

	verifiedSet := make(map[models.DocumentType]bool, len(verified))
	for _, d := range verified {
		verifiedSet[d] = true
	}
	// Facility photos substitute for insurance in the fourth slot.
	if !verifiedSet[models.DocumentInsurance] && verifiedSet[models.DocumentFacilityPhotos] {
		verifiedSet[models.DocumentInsurance] = true
	}

	covered := 0
	for _, r := range required {
		if verifiedSet[r] {
			covered++
		}
	}

	base := float64(covered) / float64(len(required)) * 80
	bonus := math.Min(float64(len(verified)-len(required)), 5) * 4
	if bonus < 0 {
		bonus = 0
	}

	return math.Min(base+bonus, 100)
}

var priorityStates = map[string]bool{
	"Borno": true, "Yobe": true, "Adamawa": true, "Bauchi": true,
	"Gombe": true, "Taraba": true, "Jigawa": true, "Kebbi": true,
	"Sokoto": true, "Zamfara": true,
}

var moderatePriorityStates = map[string]bool{
	"Katsina": true, "Niger": true, "Plateau": true, "Nasarawa": true,
	"Benue": true, "Kogi": true, "Kwara": true, "Ekiti": true,
	"Ebonyi": true,
}

// locationScore favors underserved states and rural placements.
func locationScore(app *models.Application) float64 {
	var score float64

	switch {
	case priorityStates[app.State]:
		score = 50
	case moderatePriorityStates[app.State]:
		score = 40
	default:
		score = 30
	}

	if app.IsRural {
		score += 20
	} else {
		score += 10
	}

	if app.HasParking {
		score += 15
	}
	if app.NearTransit {
		score += 15
	}

	return math.Min(score, 100)
}

var essentialServices = []string{
	"Emergency Care",
	"Outpatient Services",
	"Inpatient Services",
	"Laboratory Services",
	"Pharmacy Services",
}

var specializedServices = []string{
	"Surgery", "Pediatrics", "Obstetrics", "Radiology",
	"ICU", "Dialysis", "Oncology", "Cardiology",
}

func servicesScore(app *models.Application) float64 {
	var essentialCount, specializedCount int

	for _, svc := range app.ServicesOffered {
		lower := strings.ToLower(svc)
		for _, e := range essentialServices {
			if strings.Contains(lower, strings.ToLower(e)) {
				essentialCount++
				break
			}
		}
		for _, s := range specializedServices {
			if strings.Contains(lower, strings.ToLower(s)) {
				specializedCount++
				break
			}
		}
	}

	score := float64(essentialCount) / float64(len(essentialServices)) * 50
	score += math.Min(float64(specializedCount)*5, 30)
	score += math.Min(float64(len(app.Specializations))*5, 20)

	return math.Min(score, 100)
}

func financialScore(app *models.Application) float64 {
	var score float64

	switch {
	case app.EstimatedRevenue >= 100_000_000:
		score = 40
	case app.EstimatedRevenue >= 50_000_000:
		score = 35
	case app.EstimatedRevenue >= 25_000_000:
		score = 30
	case app.EstimatedRevenue >= 10_000_000:
		score = 25
	case app.EstimatedRevenue >= 5_000_000:
		score = 20
	case app.EstimatedRevenue > 0:
		score = 15
	default:
		score = 20
	}

	if app.HasInsurancePartners {
		score += 15
	}
	if app.HasHMOPartners {
		score += 15
	}
	if app.HasGovernmentContract {
		score += 20
	}

	switch {
	case app.YearsInOperation >= 10:
		score += 10
	case app.YearsInOperation >= 5:
		score += 8
	case app.YearsInOperation >= 3:
		score += 6
	case app.YearsInOperation >= 1:
		score += 4
	default:
		score += 2
	}

	return math.Min(score, 100)
}

// reputationScore is flat pending reference checks.
func reputationScore() float64 {
	return 50
}

// riskLevel grades exposure from the compliance, financial and reputation
// scores.
func riskLevel(s models.CategoryScores) models.RiskLevel {
	risk := 100 - (s.Compliance+s.Financial+s.Reputation)/3
	switch {
	case risk <= 20:
		return models.RiskLow
	case risk <= 40:
		return models.RiskModerate
	case risk <= 60:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

func (e *Engine) summarize(s models.CategoryScores, total float64) string {
	categories := map[string]float64{
		"facility":   s.Facility,
		"staffing":   s.Staffing,
		"equipment":  s.Equipment,
		"compliance": s.Compliance,
		"financial":  s.Financial,
		"location":   s.Location,
		"services":   s.Services,
		"reputation": s.Reputation,
	}

	var strengths, weaknesses []string
	for name, score := range categories {
		if score >= 70 {
			strengths = append(strengths, name)
		} else if score < 50 {
			weaknesses = append(weaknesses, name)
		}
	}
	sort.Strings(strengths)
	sort.Strings(weaknesses)

	var b strings.Builder
	fmt.Fprintf(&b, "Overall Score: %.2f/100\n", total)
	fmt.Fprintf(&b, "Recommendation: %s\n", e.Recommend(total))

	if len(strengths) > 0 {
		b.WriteString("\nStrengths:\n")
		for _, name := range strengths {
			fmt.Fprintf(&b, "- Strong %s capabilities\n", name)
		}
	}
	if len(weaknesses) > 0 {
		b.WriteString("\nAreas for Improvement:\n")
		for _, name := range weaknesses {
			fmt.Fprintf(&b, "- %s needs enhancement\n", name)
		}
	}

	return b.String()
}
