package grid

import "time"

// Cell is one decorated grid position.
type Cell struct {
	Date       time.Time
	InMonth    bool
	IsToday    bool
	IsSelected bool
}

// MonthView is a grid whose cells carry the flags a renderer needs.
type MonthView struct {
	Year  int
	Month time.Month
	Weeks [Weeks][DaysPerWeek]Cell
}

// BuildMonthView builds the grid for ref and marks in-month cells, the
// cell matching today, and the cell matching selected (if non-nil).
func BuildMonthView(ref, today time.Time, selected *time.Time) MonthView {
	m := BuildMonthGrid(ref)
	v := MonthView{Year: ref.Year(), Month: ref.Month()}
	for w := range m {
		for d, date := range m[w] {
			v.Weeks[w][d] = Cell{
				Date:       date,
				InMonth:    InMonth(date, ref),
				IsToday:    SameDay(date, today),
				IsSelected: selected != nil && SameDay(date, *selected),
			}
		}
	}
	return v
}
