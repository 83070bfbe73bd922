package alerts

import (
	"fmt"
	"math"

	"pet-diary/pkg/clock"
)

// Evaluate derives advisory alerts from recent weight history. It is pure:
// the same input always yields the same alerts.
func Evaluate(input EvaluationInput) []Alert {
	alerts := make([]Alert, 0, 2)

	if len(input.Latest) >= 2 {
		latest, previous := input.Latest[0], input.Latest[1]
		delta := latest.Grams - previous.Grams
		percent := 0.0
		if previous.Grams != 0 {
			percent = delta / previous.Grams * 100
		}
		if percent <= WeightLossThresholdPct {
			alerts = append(alerts, Alert{
				AnimalID: input.AnimalID,
				Type:     TypeWeightLoss,
				Level:    LevelWarning,
				Message: fmt.Sprintf("Weight dropped by %.0fg (%.1f%%) since %s",
					math.Round(math.Abs(delta)), math.Abs(percent), clock.FormatDate(previous.Date)),
			})
		}
	}

	if input.RecentCount == 0 {
		alerts = append(alerts, Alert{
			AnimalID: input.AnimalID,
			Type:     TypeNoRecord,
			Level:    LevelInfo,
			Message:  fmt.Sprintf("No weight recorded in the last %d days", NoRecordWindowDays),
		})
	}

	return alerts
}
