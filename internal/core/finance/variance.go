// Package finance implements the project cost calculators exposed as
// chat tools: budget variance, delay cost impact, and final cost
// projection.
package finance

import (
	"fmt"
	"math"
)

type BudgetStatus string

const (
	StatusOnBudget    BudgetStatus = "on_budget"
	StatusOverBudget  BudgetStatus = "over_budget"
	StatusUnderBudget BudgetStatus = "under_budget"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type BudgetVarianceInput struct {
	ProjectName          string  `json:"project_name"`
	OriginalBudget       float64 `json:"original_budget"`
	ActualSpending       float64 `json:"actual_spending"`
	CompletionPercentage float64 `json:"completion_percentage,omitempty"`
}

type BudgetVarianceResult struct {
	ProjectName        string       `json:"project_name"`
	OriginalBudget     float64      `json:"original_budget"`
	ActualSpending     float64      `json:"actual_spending"`
	VarianceAmount     float64      `json:"variance_amount"`
	VariancePercentage float64      `json:"variance_percentage"`
	Status             BudgetStatus `json:"status"`
	RiskLevel          RiskLevel    `json:"risk_level"`
	Analysis           string       `json:"analysis"`
}

// BudgetVariance compares actual spending against the approved budget.
// A variance within 2 percent either way counts as on budget.
func BudgetVariance(in BudgetVarianceInput) BudgetVarianceResult {
	variance := in.ActualSpending - in.OriginalBudget
	var pct float64
	if in.OriginalBudget > 0 {
		pct = variance / in.OriginalBudget * 100
	}

	status := StatusOnBudget
	switch {
	case math.Abs(pct) <= 2:
		status = StatusOnBudget
	case pct > 0:
		status = StatusOverBudget
	default:
		status = StatusUnderBudget
	}

	var risk RiskLevel
	switch {
	case math.Abs(pct) <= 5:
		risk = RiskLow
	case math.Abs(pct) <= 15:
		risk = RiskModerate
	case math.Abs(pct) <= 25:
		risk = RiskHigh
	default:
		risk = RiskCritical
	}

	return BudgetVarianceResult{
		ProjectName:        in.ProjectName,
		OriginalBudget:     in.OriginalBudget,
		ActualSpending:     in.ActualSpending,
		VarianceAmount:     variance,
		VariancePercentage: pct,
		Status:             status,
		RiskLevel:          risk,
		Analysis:           varianceAnalysis(in, status, pct, variance),
	}
}

func varianceAnalysis(in BudgetVarianceInput, status BudgetStatus, pct, variance float64) string {
	var analysis string
	switch status {
	case StatusOverBudget:
		switch {
		case pct <= 10:
			analysis = fmt.Sprintf("%s is running %.1f%% over budget. Manageable, but check for scope creep and undocumented change orders.", in.ProjectName, pct)
		case pct <= 25:
			analysis = fmt.Sprintf("%s is %.1f%% over budget. Review change orders, permit-driven labor overruns, and material cost surprises.", in.ProjectName, pct)
		default:
			analysis = fmt.Sprintf("%s is %.1f%% over budget ($%.0f overrun). This needs an emergency review.", in.ProjectName, pct, variance)
		}
	case StatusUnderBudget:
		if in.CompletionPercentage > 0 && in.CompletionPercentage < 80 {
			analysis = fmt.Sprintf("%s shows %.1f%% under budget, but billing may simply lag at this stage. Revisit at 90%% completion.", in.ProjectName, math.Abs(pct))
		} else {
			analysis = fmt.Sprintf("%s came in %.1f%% under budget.", in.ProjectName, math.Abs(pct))
		}
	default:
		analysis = fmt.Sprintf("%s is close to budget (%.1f%% variance). Keep watching it.", in.ProjectName, pct)
	}

	if in.CompletionPercentage > 0 {
		if in.CompletionPercentage < 50 && pct > 10 {
			analysis += fmt.Sprintf(" At %.0f%% complete, the projected final overrun could reach %.1f%%.", in.CompletionPercentage, pct*2)
		} else if in.CompletionPercentage > 80 && status == StatusOverBudget {
			analysis += fmt.Sprintf(" At %.0f%% complete, focus on controlling the final stretch.", in.CompletionPercentage)
		}
	}
	return analysis
}
