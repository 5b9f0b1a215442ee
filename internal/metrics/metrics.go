// Package metrics derives the elapsed-time and cost figures recorded on
// work requests and service reports. Every function is pure.
package metrics

import (
	"math"
	"time"

	"github.com/ukydev/maintenance-tracker/internal/apperr"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

// TurnaroundHours returns the whole hours between creation and closure,
// rounded to the nearest hour.
func TurnaroundHours(createdAt, closedAt time.Time) (int, error) {
	if closedAt.Before(createdAt) {
		return 0, apperr.InvariantViolation("closed at %s before created at %s",
			closedAt.Format(time.RFC3339), createdAt.Format(time.RFC3339))
	}
	return int(math.Round(closedAt.Sub(createdAt).Hours())), nil
}

// ManHours returns the hours worked between start and end.
func ManHours(start, end time.Time) (float64, error) {
	if !end.After(start) {
		return 0, apperr.InvalidInput("work end time must be after start time")
	}
	return end.Sub(start).Hours(), nil
}

// TotalPartsCost sums quantity times unit cost over the parts list.
func TotalPartsCost(parts []models.PartUsed) (float64, error) {
	var total float64
	for i, p := range parts {
		if p.Quantity < 0 {
			return 0, apperr.InvalidInput("part %d (%s): negative quantity", i+1, p.PartName)
		}
		if p.Cost < 0 {
			return 0, apperr.InvalidInput("part %d (%s): negative cost", i+1, p.PartName)
		}
		total += p.Quantity * p.Cost
	}
	return total, nil
}
