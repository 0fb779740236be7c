package insight

import (
	"fmt"
	"strings"

	"github.com/sells-group/landscope/internal/access"
)

const systemPrompt = `You are a GIS and soil remediation analyst supporting agricultural recovery field teams in the Gaza Strip.
Answer with a single JSON object and nothing else: no prose and no markdown fences.
Use the exact camelCase field names requested. Write every field in English unless the field name says Arabic.`

func soilPrompt(q Query) string {
	status := "SAFE ACCESS"
	if q.Access.Level == access.Restricted {
		status = "DANGER - MILITARY ZONE"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "GIS TACTICAL ANALYSIS - TIMELINE: 2025-2028.\nLocation: Lat %.5f, Lng %.5f.\n", q.Point.Lat, q.Point.Lng)
	if q.Cell != nil {
		fmt.Fprintf(&b, "Sector %s: %s contamination, toxicity %s, persistence %d months.\n",
			q.Cell.SectorID, q.Cell.Contaminant, q.Cell.Toxicity, q.Cell.PersistenceMonths)
	}
	b.WriteString(`Synthesize simulated multi-spectral satellite imagery, historical climate data and soil maps for this coordinate.
Required analysis:
1. Soil classification: specific texture (e.g. Silty Alluvial vs Sandy Regosol).
2. 2026-2028 forecast: impact of debris sedimentation and projected soil health.
3. Three strategic crops suited to Mediterranean seasons and the local salinity and toxicity.
4. Most likely available water source.
5. Potential endemic diseases related to soil and water quality.
6. Seasonal impact of winter rains and summer heat on remediation.
`)
	fmt.Fprintf(&b, "7. Access status: %s.\n", status)
	b.WriteString(`Fields: soilType, sedimentationLevel, primaryCrops (array), preferredStrategicCrops (array),
salinityRisk (one of Low, Moderate, High), remediationAdvice, satelliteNotes, arabicSummary (Arabic),
waterSource, potentialDiseases (array), climateOutlook, seasonalImpact.`)
	return b.String()
}

func guidePrompt(q Query) string {
	c := q.Cell
	return fmt.Sprintf(`SOIL TOXICOLOGY AND CRISIS AGRONOMY REPORT (2025-2027).
Farm location: [%.5f, %.5f].
Contaminant: %s.
Toxicity: %s.

Provide:
1. Hazard explanation: the science of this contaminant in local soil.
2. Phyto-extraction strategy: specific plants for toxin removal under Mediterranean seasons.
3. Safety protocol: immediate steps protecting field agents from UXO or chemical residue.
4. A practical five-step remediation checklist.
5. Two or three short health risk badges.
6. Arabic translation of the checklist only.
Fields: hazardExplanation, phytoStrategy, plantingSteps (array), recommendedSeeds (array),
safetyProtocol, arabicGuide (Arabic), riskBadges (array).`,
		c.Center.Lat, c.Center.Lng, c.Contaminant, c.Toxicity)
}

func crisisPrompt(q CrisisQuery) string {
	c := q.Cell
	alert := fmt.Sprintf("%s at sector %s, toxicity %s, persistence %dM", c.Contaminant, c.SectorID, c.Toxicity, c.PersistenceMonths)

	plan := "No remediation guide available."
	if q.Guide != nil {
		plan = fmt.Sprintf("Safety protocol: %s. Remediation steps: %s", q.Guide.SafetyProtocol, strings.Join(q.Guide.PlantingSteps, " | "))
	}

	soil := "No soil insights available."
	if q.Insight != nil {
		soil = fmt.Sprintf("Soil: %s, recommended crops: %s, seasonal: %s",
			q.Insight.SoilType, strings.Join(q.Insight.PreferredStrategicCrops, ", "), q.Insight.SeasonalImpact)
	}

	return fmt.Sprintf(`CRISIS ANALYSIS AND COORDINATION REPORT - 2025-2027

Sector alert: %s
Remediation plan: %s
Agricultural context: %s

Provide:
1. Overall assessment of urgency, scope and feasibility.
2. Three to five immediate actions for the next 72 hours.
3. Three or four main risk factors.
4. A realistic remediation timeline for this contaminant and persistence.
5. Resource needs: equipment, personnel, seeds or support.
6. How this sector fits the wider territorial recovery.
Fields: overallAssessment, immediateActions (array), riskFactors (array), timelineForecast,
resourceNeeds (array), coordinationNotes, arabicSummary (Arabic).`, alert, plan, soil)
}

// extractJSON trims markdown fences and surrounding prose, returning the
// outermost JSON object in text.
func extractJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
