package finance

import "fmt"

const (
	defaultDailyOverhead = 2500.0
	overheadShareOfValue = 0.002
	laborHourlyRate      = 35.0
	laborHoursPerDay     = 8.0
	laborShareOfOverhead = 0.6
	equipmentShare       = 0.25
	annualMargin         = 0.12
	opportunityShare     = 0.15
)

type DelayImpactInput struct {
	ProjectName       string  `json:"project_name"`
	DelayDays         int     `json:"delay_days"`
	DailyOverheadCost float64 `json:"daily_overhead_cost,omitempty"`
	ProjectValue      float64 `json:"project_value,omitempty"`
	CrewSize          int     `json:"crew_size,omitempty"`
}

type DelayImpactResult struct {
	ProjectName       string  `json:"project_name"`
	DelayDays         int     `json:"delay_days"`
	DailyOverheadCost float64 `json:"daily_overhead_cost"`
	TotalDelayCost    float64 `json:"total_delay_cost"`
	LaborImpact       float64 `json:"labor_impact"`
	EquipmentImpact   float64 `json:"equipment_impact"`
	OpportunityCost   float64 `json:"opportunity_cost"`
	Analysis          string  `json:"analysis"`
}

// DelayImpact estimates the cost of a schedule slip. Missing inputs are
// estimated: overhead from project value (0.2% per day) or a flat
// construction default, labor from crew size at standard rates or as a
// share of overhead.
func DelayImpact(in DelayImpactInput) DelayImpactResult {
	days := float64(in.DelayDays)

	overhead := in.DailyOverheadCost
	if overhead <= 0 {
		if in.ProjectValue > 0 {
			overhead = in.ProjectValue * overheadShareOfValue
		} else {
			overhead = defaultDailyOverhead
		}
	}

	var labor float64
	if in.CrewSize > 0 {
		labor = float64(in.CrewSize) * laborHourlyRate * laborHoursPerDay * days
	} else {
		labor = overhead * laborShareOfOverhead * days
	}

	equipment := overhead * equipmentShare * days

	var opportunity float64
	if in.ProjectValue > 0 {
		opportunity = in.ProjectValue * annualMargin / 365 * days
	} else {
		opportunity = overhead * opportunityShare * days
	}

	total := overhead*days + labor + equipment + opportunity

	return DelayImpactResult{
		ProjectName:       in.ProjectName,
		DelayDays:         in.DelayDays,
		DailyOverheadCost: overhead,
		TotalDelayCost:    total,
		LaborImpact:       labor,
		EquipmentImpact:   equipment,
		OpportunityCost:   opportunity,
		Analysis:          delayAnalysis(in, overhead, total),
	}
}

func delayAnalysis(in DelayImpactInput, overhead, total float64) string {
	var severity string
	switch {
	case in.DelayDays <= 3:
		severity = "a minor hiccup"
	case in.DelayDays <= 10:
		severity = "a real problem"
	case in.DelayDays <= 20:
		severity = "a serious issue"
	default:
		severity = "a disaster"
	}

	analysis := fmt.Sprintf("%s is facing a %d-day delay - %s. Estimated delay cost is $%.0f.",
		in.ProjectName, in.DelayDays, severity, total)
	if in.DelayDays > 7 {
		analysis += fmt.Sprintf(" At $%.0f per day in overhead alone, removing bottlenecks should be the priority.", overhead)
	}
	if in.ProjectValue > 0 {
		analysis += fmt.Sprintf(" That is %.1f%% of the total project value.", total/in.ProjectValue*100)
	}
	return analysis
}
