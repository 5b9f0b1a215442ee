package export

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

// ScheduleCalendar renders one all-day event per active schedule on its
// next due date. Inactive schedules are left out.
func ScheduleCalendar(schedules []models.PMSchedule, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//maintenance-tracker//PM schedules//EN")
	cal.SetName("Preventive maintenance")

	for _, s := range schedules {
		if !s.IsActive {
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("%s@maintenance-tracker", s.ScheduleID))
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(s.NextDueDate)
		event.SetAllDayEndAt(s.NextDueDate.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("PM %s: %s", s.AssetCode, s.Description))
		event.SetLocation(s.AssetName)
		event.SetDescription(scheduleDescription(s))
	}
	return cal.Serialize()
}

func scheduleDescription(s models.PMSchedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s), about %d minutes.", s.ScheduleID, s.Frequency, s.EstimatedDuration)
	if s.AssignedToName != "" {
		fmt.Fprintf(&b, " Assigned to %s.", s.AssignedToName)
	}
	if len(s.Tasks) > 0 {
		fmt.Fprintf(&b, " Tasks: %s.", strings.Join(s.Tasks, "; "))
	}
	return b.String()
}
