package reminders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-diary/internal/domain/validation"
	"pet-diary/pkg/clock"
)

type Metrics interface {
	ObserveCompletion(completed bool)
}

type noopMetrics struct{}

func (noopMetrics) ObserveCompletion(bool) {}

type Service struct {
	repo    Repository
	clock   *clock.Clock
	metrics Metrics
}

func NewService(repo Repository, clk *clock.Clock, metrics Metrics) *Service {
	if clk == nil {
		clk = clock.New(nil, nil)
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{repo: repo, clock: clk, metrics: metrics}
}

func (s *Service) Today() time.Time {
	return s.clock.Today()
}

// ListToday returns the caller's reminders visible on the local today.
func (s *Service) ListToday(ctx context.Context, ownerID string) ([]View, error) {
	reminders, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return FilterToday(reminders, s.clock.Today()), nil
}

// ListAll returns every reminder, disabled and expired ones included.
func (s *Service) ListAll(ctx context.Context, ownerID string) ([]View, error) {
	reminders, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	views := make([]View, 0, len(reminders))
	for _, reminder := range SortByTargetTime(reminders) {
		views = append(views, ViewOn(reminder, today))
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, ownerID, reminderID string) (*Reminder, error) {
	if _, err := uuid.Parse(reminderID); err != nil {
		return nil, ErrReminderNotFound
	}
	reminder, err := s.repo.GetByID(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return reminder, nil
}

func (s *Service) Create(ctx context.Context, input SaveReminderInput) (*Reminder, error) {
	reminder := Reminder{
		ID:        uuid.NewString(),
		OwnerID:   input.OwnerID,
		IsEnabled: true,
	}
	if err := applyDefinition(&reminder, input); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// Update replaces the definition fields, days of week included. The
// completion date is left alone.
func (s *Service) Update(ctx context.Context, input SaveReminderInput) (*Reminder, error) {
	reminder, err := s.Get(ctx, input.OwnerID, input.ID)
	if err != nil {
		return nil, err
	}
	if err := applyDefinition(reminder, input); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// ToggleComplete is the only writer of the completion date.
func (s *Service) ToggleComplete(ctx context.Context, ownerID, reminderID string, completed bool) (*Reminder, error) {
	reminder, err := s.Get(ctx, ownerID, reminderID)
	if err != nil {
		return nil, err
	}

	var date *time.Time
	if completed {
		today := s.clock.Today()
		date = &today
	}
	if err := s.repo.SetLastCompletedDate(ctx, ownerID, reminderID, date); err != nil {
		return nil, err
	}

	reminder.LastCompletedDate = date
	s.metrics.ObserveCompletion(completed)
	return reminder, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, reminderID string) error {
	if _, err := s.Get(ctx, ownerID, reminderID); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, ownerID, reminderID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrReminderNotFound
	}
	return nil
}

func applyDefinition(reminder *Reminder, input SaveReminderInput) error {
	title := strings.TrimSpace(input.Title)
	targetTime := strings.TrimSpace(input.TargetTime)

	err := validation.First(
		validation.Required("title", title),
		validation.MaxLen("title", title, maxTitleLength),
	)
	if err != nil {
		return err
	}
	if targetTime != "" && !validation.IsClockTime(targetTime) {
		return validation.Errorf("targetTime", "must be HH:mm or empty for all day")
	}

	frequency := input.Frequency
	days := WeekdaySet(0)
	if input.IsRepeat {
		switch frequency {
		case FrequencyDaily:
		case FrequencyWeekly:
			parsed, err := ParseWeekdays(input.DaysOfWeek)
			if err != nil {
				return validation.Errorf("daysOfWeek", "%s", err.Error())
			}
			if parsed.IsEmpty() {
				return validation.Errorf("daysOfWeek", "must include at least one day for weekly reminders")
			}
			days = parsed
		case "":
			return validation.Errorf("frequency", "is required for repeating reminders")
		default:
			return validation.Errorf("frequency", "must be daily or weekly")
		}
	} else {
		frequency = ""
	}

	reminder.Title = title
	reminder.TargetTime = targetTime
	reminder.IsRepeat = input.IsRepeat
	reminder.Frequency = frequency
	reminder.DaysOfWeek = days
	if input.IsEnabled != nil {
		reminder.IsEnabled = *input.IsEnabled
	}
	return nil
}
