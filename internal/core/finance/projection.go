package finance

import (
	"fmt"
	"strings"
)

const (
	bestCaseFactor  = 0.95
	worstCaseFactor = 1.15
)

// riskFactors maps risk keywords to the cost multiplier each adds when a
// remaining risk mentions it. First matching keyword per risk wins.
var riskFactors = []struct {
	keyword    string
	multiplier float64
}{
	{"permit", 0.05},
	{"weather", 0.03},
	{"inspection", 0.04},
	{"material", 0.08},
	{"labor", 0.06},
	{"change order", 0.10},
	{"fire marshal", 0.06},
}

type ProjectionInput struct {
	ProjectName          string   `json:"project_name"`
	OriginalBudget       float64  `json:"original_budget"`
	ActualSpending       float64  `json:"actual_spending"`
	CompletionPercentage float64  `json:"completion_percentage"`
	RemainingRisks       []string `json:"remaining_risks,omitempty"`
}

type ProjectionScenarios struct {
	BestCase  float64 `json:"best_case"`
	Realistic float64 `json:"realistic"`
	WorstCase float64 `json:"worst_case"`
}

type ProjectionResult struct {
	ProjectName          string              `json:"project_name"`
	CompletionPercentage float64             `json:"completion_percentage"`
	ProjectedFinalCost   float64             `json:"projected_final_cost"`
	BestCaseCost         float64             `json:"best_case_cost"`
	WorstCaseCost        float64             `json:"worst_case_cost"`
	VarianceAmount       float64             `json:"variance_amount"`
	VariancePercentage   float64             `json:"variance_percentage"`
	RiskFactors          []string            `json:"risk_factors"`
	Analysis             string              `json:"analysis"`
	Scenarios            ProjectionScenarios `json:"scenarios"`
}

// ProjectFinalCost extrapolates the final cost from the current burn
// rate and inflates it for each recognized remaining risk.
func ProjectFinalCost(in ProjectionInput) ProjectionResult {
	completion := in.CompletionPercentage
	if completion <= 0 {
		completion = 1
	}

	projected := in.ActualSpending / (completion / 100)
	bestCase := projected * bestCaseFactor
	worstCase := projected * worstCaseFactor

	riskMultiplier := 1.0
	for _, risk := range in.RemainingRisks {
		lower := strings.ToLower(risk)
		for _, f := range riskFactors {
			if strings.Contains(lower, f.keyword) {
				riskMultiplier += f.multiplier
				break
			}
		}
	}

	realistic := projected * riskMultiplier
	variance := realistic - in.OriginalBudget
	var pct float64
	if in.OriginalBudget > 0 {
		pct = variance / in.OriginalBudget * 100
	}

	risks := in.RemainingRisks
	if risks == nil {
		risks = []string{}
	}

	return ProjectionResult{
		ProjectName:          in.ProjectName,
		CompletionPercentage: completion,
		ProjectedFinalCost:   realistic,
		BestCaseCost:         bestCase,
		WorstCaseCost:        worstCase,
		VarianceAmount:       variance,
		VariancePercentage:   pct,
		RiskFactors:          risks,
		Analysis:             projectionAnalysis(in.ProjectName, completion, realistic, pct),
		Scenarios: ProjectionScenarios{
			BestCase:  bestCase,
			Realistic: realistic,
			WorstCase: worstCase * riskMultiplier,
		},
	}
}

func projectionAnalysis(name string, completion, realistic, pct float64) string {
	var outlook, advice string
	switch {
	case pct <= 5:
		outlook = "On track"
		advice = "No course change needed"
	case pct <= 15:
		outlook = "Manageable but watch it"
		advice = "Time to get serious about cost control"
	case pct <= 25:
		outlook = "Problem territory"
		advice = "Cost-cutting measures needed"
	default:
		outlook = "Critical overrun projected"
		advice = "Stop and reassess before committing further spend"
	}

	analysis := fmt.Sprintf("%s - %s is projecting $%.0f final cost (%+.1f%% vs original budget). %s.",
		outlook, name, realistic, pct, advice)
	if completion < 75 {
		analysis += fmt.Sprintf(" At %.0f%% complete, there is still time to course-correct.", completion)
	} else {
		analysis += fmt.Sprintf(" At %.0f%% complete, focus on controlling the finish.", completion)
	}
	return analysis
}
