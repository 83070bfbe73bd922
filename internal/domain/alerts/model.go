package alerts

import "time"

const (
	WeightLossThresholdPct = -5.0
	NoRecordWindowDays     = 3
)

type Type string

const (
	TypeWeightLoss Type = "weight_loss"
	TypeNoRecord   Type = "no_record"
)

type Level string

const (
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Alert is derived on read and never stored.
type Alert struct {
	AnimalID string
	Type     Type
	Level    Level
	Message  string
}

type WeightSample struct {
	ID    string
	Date  time.Time
	Grams float64
}

type EvaluationInput struct {
	AnimalID string
	// Latest holds up to two most recent weights, newest first.
	Latest []WeightSample
	// RecentCount is the number of weights dated within the trailing window ending today.
	RecentCount int64
}

// AnimalAlerts groups the alerts of one animal for the landing view.
type AnimalAlerts struct {
	AnimalID   string
	AnimalName string
	Alerts     []Alert
}
