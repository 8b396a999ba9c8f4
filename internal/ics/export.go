package ics

import (
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	"fincal/internal/model"
)

const productID = "-//fincal//calendar//EN"

// Export renders events as a VCALENDAR. Dates are written as floating
// local times so a round trip keeps the wall clock unchanged.
func Export(events []model.Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(stamp)
		ve.SetSummary(e.Title)
		ve.SetProperty(ical.ComponentPropertyDtStart, e.Date.Format(layoutFloating))
		ve.SetProperty(PropertyKind, string(e.Kind))
		// One escaped value; commas inside the category are data.
		ve.SetProperty(ical.ComponentPropertyCategories, e.CategoryOrDefault())
		if e.Color != "" {
			ve.SetProperty(propertyColor, e.Color)
		}
		if e.ParticipantCount != nil {
			ve.SetProperty(PropertyParticipants, strconv.Itoa(*e.ParticipantCount))
		}
	}
	return cal.Serialize()
}
