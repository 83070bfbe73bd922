package records

import (
	"strings"
	"testing"
	"time"

	"pet-diary/internal/domain/validation"
)

func validInput() DailyBatchInput {
	return DailyBatchInput{
		OwnerID:  "owner-1",
		AnimalID: "0b7f6a52-5d0f-4d4f-9a53-3f3c2b1f1a10",
		Date:     time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidateBatchFirstViolationOnly(t *testing.T) {
	weight := -1.0
	humidity := 140.0
	input := validInput()
	input.Weight = &weight
	input.Humidity = &humidity

	verr, ok := validation.As(validateBatch(input))
	if !ok || verr.Field != "weight" {
		t.Fatalf("expected weight reported first, got %v", verr)
	}
}

func TestValidateBatchRanges(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*DailyBatchInput)
		field string
	}{
		{"bad animal id", func(in *DailyBatchInput) { in.AnimalID = "nope" }, "animalId"},
		{"missing date", func(in *DailyBatchInput) { in.Date = time.Time{} }, "date"},
		{"short key", func(in *DailyBatchInput) { in.IdempotencyKey = "abc" }, "idempotencyKey"},
		{"heavy", func(in *DailyBatchInput) { w := 200001.0; in.Weight = &w }, "weight"},
		{"cold", func(in *DailyBatchInput) { c := -51.0; in.Temperature = &c }, "temperature"},
		{"long memo", func(in *DailyBatchInput) { m := strings.Repeat("a", MaxMemoLength+1); in.Memo = &m }, "memo"},
		{"meal time", func(in *DailyBatchInput) { in.Meals = []MealInput{{Time: "8:00", Content: "hay"}} }, "meals[0].time"},
		{"meal content", func(in *DailyBatchInput) { in.Meals = []MealInput{{Time: "08:00", Content: strings.Repeat("x", 31)}} }, "meals[0].content"},
		{"meal amount", func(in *DailyBatchInput) { a := -1.0; in.Meals = []MealInput{{Time: "08:00", Content: "hay", Amount: &a}} }, "meals[0].amount"},
		{"excretion type", func(in *DailyBatchInput) {
			in.Excretions = []ExcretionInput{{Time: "08:00", Type: "sweat", Condition: ConditionNormal}}
		}, "excretions[0].type"},
		{"medication name", func(in *DailyBatchInput) { in.Medications = []MedicationInput{{Time: "08:00"}} }, "medications[0].name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.edit(&input)
			verr, ok := validation.As(validateBatch(normalizeBatchInput(input)))
			if !ok || verr.Field != tc.field {
				t.Fatalf("expected violation on %s, got %v", tc.field, verr)
			}
		})
	}
}

func TestValidateBatchAbnormalExcretionNeedsNotes(t *testing.T) {
	input := validInput()
	input.Excretions = []ExcretionInput{{Time: "08:00", Type: ExcretionStool, Condition: ConditionAbnormal, Notes: "   "}}
	if err := validateBatch(normalizeBatchInput(input)); err == nil {
		t.Fatalf("expected whitespace-only notes rejected")
	}

	input.Excretions[0].Notes = "loose"
	if err := validateBatch(normalizeBatchInput(input)); err != nil {
		t.Fatalf("expected notes to satisfy rule, got %v", err)
	}
}

func TestParseWeightRange(t *testing.T) {
	r, err := ParseWeightRange("")
	if err != nil || r.Days() != 30 {
		t.Fatalf("expected default 30d, got %q %v", r, err)
	}
	r, err = ParseWeightRange("180d")
	if err != nil || r.Days() != 180 {
		t.Fatalf("expected 180d, got %q %v", r, err)
	}
	if _, err := ParseWeightRange("7d"); err == nil {
		t.Fatalf("expected 7d rejected")
	}
}
