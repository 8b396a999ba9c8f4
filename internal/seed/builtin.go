package seed

import (
	"fmt"
	"time"
)

// Builtin returns the sample events shown on a fresh dashboard, placed
// around now's month.
func Builtin(now time.Time) []Entry {
	y, m, _ := now.Date()
	at := func(monthOffset, day, hour, minute int) string {
		t := time.Date(y, m+time.Month(monthOffset), day, hour, minute, 0, 0, time.Local)
		return t.Format("2006-01-02 15:04")
	}
	four, two := 4, 2

	return []Entry{
		{Title: "Pay rent", Date: at(0, 1, 9, 0), Kind: "reminder", Category: "bills", RRule: "FREQ=MONTHLY"},
		{Title: "Salary deposit", Date: at(0, 25, 8, 0), Kind: "reminder", Category: "income", RRule: "FREQ=MONTHLY;BYMONTHDAY=25"},
		{Title: "Monthly budget review", Date: at(0, 3, 18, 30), Kind: "meeting", Category: "budget", Participants: &two},
		{Title: "Financial advisor call", Date: at(0, 12, 10, 0), Kind: "meeting", Category: "investments", Participants: &two},
		{Title: "Pay credit card bill", Date: at(0, 15, 9, 0), Kind: "task", Category: "bills"},
		{Title: "Categorize expenses", Date: at(0, 20, 20, 0), Kind: "task"},
		{Title: "Family dinner", Date: at(0, 18, 19, 30), Kind: "personal", Participants: &four},
		{Title: "Insurance renewal", Date: at(1, 5, 0, 0), Kind: "reminder", Category: "insurance"},
		{Title: "Quarterly tax estimate", Date: at(1, 10, 14, 0), Kind: "task", Category: "taxes"},
		{Title: fmt.Sprintf("Savings goal check-in %d", y), Date: at(-1, 28, 17, 0), Kind: "personal", Category: "savings"},
	}
}
