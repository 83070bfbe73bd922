package records

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pet-diary/internal/domain/validation"
)

// normalizeBatchInput trims free text so length checks and storage see the same value.
func normalizeBatchInput(input DailyBatchInput) DailyBatchInput {
	input.AnimalID = strings.TrimSpace(input.AnimalID)
	input.IdempotencyKey = strings.TrimSpace(input.IdempotencyKey)
	if input.Memo != nil {
		memo := strings.TrimSpace(*input.Memo)
		input.Memo = &memo
	}

	if input.Meals != nil {
		meals := make([]MealInput, len(input.Meals))
		for i, meal := range input.Meals {
			meal.Time = strings.TrimSpace(meal.Time)
			meal.Content = strings.TrimSpace(meal.Content)
			meal.Unit = strings.TrimSpace(meal.Unit)
			meals[i] = meal
		}
		input.Meals = meals
	}
	if input.Excretions != nil {
		excretions := make([]ExcretionInput, len(input.Excretions))
		for i, excretion := range input.Excretions {
			excretion.Time = strings.TrimSpace(excretion.Time)
			excretion.Notes = strings.TrimSpace(excretion.Notes)
			excretions[i] = excretion
		}
		input.Excretions = excretions
	}
	if input.Medications != nil {
		medications := make([]MedicationInput, len(input.Medications))
		for i, medication := range input.Medications {
			medication.Time = strings.TrimSpace(medication.Time)
			medication.Name = strings.TrimSpace(medication.Name)
			medications[i] = medication
		}
		input.Medications = medications
	}

	return input
}

// validateBatch returns the first violation found, walking the payload in
// step order.
func validateBatch(input DailyBatchInput) error {
	if _, err := uuid.Parse(input.AnimalID); err != nil {
		return validation.Errorf("animalId", "must be a UUID")
	}
	if input.Date.IsZero() {
		return validation.Errorf("date", "is required")
	}
	if key := input.IdempotencyKey; key != "" && (len(key) < MinIdempotencyKey || len(key) > MaxIdempotencyKey) {
		return validation.Errorf("idempotencyKey", "must be %d to %d characters", MinIdempotencyKey, MaxIdempotencyKey)
	}
	if input.ExpectedVersion != nil && *input.ExpectedVersion < 0 {
		return validation.Errorf("version", "must not be negative")
	}

	if input.Weight != nil && (*input.Weight <= 0 || *input.Weight > MaxWeightGrams) {
		return validation.Errorf("weight", "must be greater than 0 and at most %d", MaxWeightGrams)
	}
	if input.Temperature != nil {
		if err := validation.Range("temperature", *input.Temperature, MinTemperatureC, MaxTemperatureC); err != nil {
			return err
		}
	}
	if input.Humidity != nil {
		if err := validation.Range("humidity", *input.Humidity, MinHumidityPct, MaxHumidityPct); err != nil {
			return err
		}
	}
	if input.Memo != nil {
		if err := validation.MaxLen("memo", *input.Memo, MaxMemoLength); err != nil {
			return err
		}
	}

	if len(input.Meals) > MaxEntriesPerList {
		return validation.Errorf("meals", "must have at most %d entries", MaxEntriesPerList)
	}
	for i, meal := range input.Meals {
		if err := validateMeal(fmt.Sprintf("meals[%d]", i), meal); err != nil {
			return err
		}
	}

	if len(input.Excretions) > MaxEntriesPerList {
		return validation.Errorf("excretions", "must have at most %d entries", MaxEntriesPerList)
	}
	for i, excretion := range input.Excretions {
		if err := validateExcretion(fmt.Sprintf("excretions[%d]", i), excretion); err != nil {
			return err
		}
	}

	if len(input.Medications) > MaxEntriesPerList {
		return validation.Errorf("medications", "must have at most %d entries", MaxEntriesPerList)
	}
	for i, medication := range input.Medications {
		prefix := fmt.Sprintf("medications[%d]", i)
		err := validation.First(
			validation.ClockTime(prefix+".time", medication.Time),
			validation.Required(prefix+".name", medication.Name),
			validation.MaxLen(prefix+".name", medication.Name, MaxMedicationName),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func validateMeal(prefix string, meal MealInput) error {
	err := validation.First(
		validation.ClockTime(prefix+".time", meal.Time),
		validation.Required(prefix+".content", meal.Content),
		validation.MaxLen(prefix+".content", meal.Content, MaxMealContent),
		validation.MaxLen(prefix+".unit", meal.Unit, MaxMealUnit),
	)
	if err != nil {
		return err
	}
	if meal.Amount != nil && *meal.Amount < 0 {
		return validation.Errorf(prefix+".amount", "must not be negative")
	}
	return nil
}

func validateExcretion(prefix string, excretion ExcretionInput) error {
	if err := validation.ClockTime(prefix+".time", excretion.Time); err != nil {
		return err
	}
	switch excretion.Type {
	case ExcretionUrine, ExcretionStool, ExcretionOther:
	default:
		return validation.Errorf(prefix+".type", "must be one of urine, stool, other")
	}
	switch excretion.Condition {
	case ConditionNormal, ConditionAbnormal:
	default:
		return validation.Errorf(prefix+".condition", "must be one of normal, abnormal")
	}
	if err := validation.MaxLen(prefix+".notes", excretion.Notes, MaxExcretionNotes); err != nil {
		return err
	}
	if excretion.Condition == ConditionAbnormal && excretion.Notes == "" {
		return validation.Errorf(prefix+".notes", "are required when condition is abnormal")
	}
	return nil
}
