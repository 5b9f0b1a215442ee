// Package recurrence advances preventive maintenance schedules after each
// completion.
package recurrence

import (
	"time"

	"github.com/ukydev/maintenance-tracker/internal/apperr"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

var intervalDays = map[models.Frequency]int{
	models.FrequencyDaily:      1,
	models.FrequencyWeekly:     7,
	models.FrequencyMonthly:    30,
	models.FrequencyQuarterly:  90,
	models.FrequencySemiAnnual: 180,
	models.FrequencyAnnual:     365,
}

// IntervalDays returns the fixed interval for a frequency.
func IntervalDays(f models.Frequency) (int, bool) {
	days, ok := intervalDays[f]
	return days, ok
}

// IsValidFrequency checks if a frequency has an interval.
func IsValidFrequency(f models.Frequency) bool {
	_, ok := intervalDays[f]
	return ok
}

// Complete records a completion at the given time and moves the due date
// one interval past it. The due date is counted from the completion, not
// from the previous due date, so late completions push the cadence later
// and early ones pull it in. A completion that is not after the last
// recorded one adds the interval to the current due date instead, so
// repeating a completion still advances the schedule.
func Complete(s models.PMSchedule, completedAt time.Time) (models.PMSchedule, error) {
	if !s.IsActive {
		return s, apperr.InvalidTransition("schedule %s is inactive", s.ScheduleID)
	}
	days, ok := IntervalDays(s.Frequency)
	if !ok {
		return s, apperr.InvariantViolation("schedule %s has unknown frequency %q", s.ScheduleID, s.Frequency)
	}

	due := completedAt.AddDate(0, 0, days)
	if s.LastCompletedDate != nil && !completedAt.After(*s.LastCompletedDate) {
		due = s.NextDueDate.AddDate(0, 0, days)
	}

	next := s
	next.LastCompletedDate = &completedAt
	next.NextDueDate = due
	next.UpdatedAt = completedAt
	return next, nil
}

// Deactivate stops a schedule from being completed again. The schedule is
// kept; nothing in the core removes one.
func Deactivate(s models.PMSchedule, now time.Time) (models.PMSchedule, error) {
	if !s.IsActive {
		return s, apperr.InvalidTransition("schedule %s is already inactive", s.ScheduleID)
	}
	next := s
	next.IsActive = false
	next.UpdatedAt = now
	return next, nil
}
