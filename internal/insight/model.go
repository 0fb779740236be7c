// Package insight requests narrative soil, remediation and crisis analyses
// for a location or grid cell from a language model.
package insight

import (
	"github.com/sells-group/landscope/internal/access"
	"github.com/sells-group/landscope/internal/geo"
	"github.com/sells-group/landscope/internal/grid"
)

// AgriculturalInsight is a soil and crop assessment for a coordinate.
type AgriculturalInsight struct {
	Location                [2]float64   `json:"location"`
	SoilType                string       `json:"soilType"`
	SedimentationLevel      string       `json:"sedimentationLevel"`
	PrimaryCrops            []string     `json:"primaryCrops"`
	PreferredStrategicCrops []string     `json:"preferredStrategicCrops"`
	SalinityRisk            string       `json:"salinityRisk"`
	RemediationAdvice       string       `json:"remediationAdvice"`
	SatelliteNotes          string       `json:"satelliteNotes"`
	ArabicSummary           string       `json:"arabicSummary"`
	DangerLevel             access.Level `json:"dangerLevel"`
	WaterSource             string       `json:"waterSource,omitempty"`
	PotentialDiseases       []string     `json:"potentialDiseases,omitempty"`
	ClimateOutlook          string       `json:"climateOutlook,omitempty"`
	SeasonalImpact          string       `json:"seasonalImpact,omitempty"`
}

// ContaminationGuide is a remediation plan for a contaminated cell.
type ContaminationGuide struct {
	HazardExplanation string   `json:"hazardExplanation"`
	PhytoStrategy     string   `json:"phytoStrategy"`
	PlantingSteps     []string `json:"plantingSteps"`
	RecommendedSeeds  []string `json:"recommendedSeeds"`
	SafetyProtocol    string   `json:"safetyProtocol"`
	ArabicGuide       string   `json:"arabicGuide"`
	RiskBadges        []string `json:"riskBadges,omitempty"`
}

// CrisisAnalysis combines a cell's hazard, guide and soil context into a
// coordination report.
type CrisisAnalysis struct {
	OverallAssessment string   `json:"overallAssessment"`
	ImmediateActions  []string `json:"immediateActions"`
	RiskFactors       []string `json:"riskFactors"`
	TimelineForecast  string   `json:"timelineForecast"`
	ResourceNeeds     []string `json:"resourceNeeds"`
	CoordinationNotes string   `json:"coordinationNotes"`
	ArabicSummary     string   `json:"arabicSummary"`
}

// Query identifies the subject of an insight request. Cell is nil for free
// map clicks.
type Query struct {
	Point  geo.Coordinate
	Access access.Result
	Cell   *grid.HazardProfile
}

// CrisisQuery carries everything known about a cell. Guide and Insight are
// optional.
type CrisisQuery struct {
	Cell    grid.HazardProfile
	Guide   *ContaminationGuide
	Insight *AgriculturalInsight
}

// FallbackGuide is returned when the model reply cannot be parsed.
func FallbackGuide() *ContaminationGuide {
	return &ContaminationGuide{
		HazardExplanation: "Error retrieving analysis.",
		PhytoStrategy:     "Strategy not found.",
		PlantingSteps:     []string{"Contact central NGO support"},
		RecommendedSeeds:  []string{},
		SafetyProtocol:    "Exercise extreme caution in the field.",
		ArabicGuide:       "حدث خطأ في استرداد البيانات.",
		RiskBadges:        []string{},
	}
}

// FallbackCrisis is returned when the model reply cannot be parsed.
func FallbackCrisis() *CrisisAnalysis {
	return &CrisisAnalysis{
		OverallAssessment: "Error retrieving crisis analysis.",
		ImmediateActions:  []string{"Contact central coordination"},
		RiskFactors:       []string{"Analysis unavailable"},
		TimelineForecast:  "Unable to forecast timeline.",
		ResourceNeeds:     []string{"Comprehensive assessment needed"},
		CoordinationNotes: "Escalate to regional command.",
		ArabicSummary:     "حدث خطأ في تحليل الأزمة.",
	}
}

// MergeCellDefaults fills the water source and disease list of ins from the
// cell's precomputed profile when the model left them empty.
func MergeCellDefaults(ins *AgriculturalInsight, cell grid.HazardProfile) {
	if ins == nil {
		return
	}
	if ins.WaterSource == "" {
		ins.WaterSource = cell.WaterSource
	}
	if len(ins.PotentialDiseases) == 0 && len(cell.HealthRisks) > 0 {
		ins.PotentialDiseases = append([]string(nil), cell.HealthRisks...)
	}
}
