package report

import (
	"time"

	"finbook/internal/core"
)

// DueDay lists the recurring bills due on one day of the month along with
// their summed amount.
type DueDay struct {
	Day   int                `json:"day"`
	Bills []core.Transaction `json:"bills"`
	Total core.Money         `json:"total"`
}

// DueCalendar indexes recurring expenses with a valid due day by day of
// month. The index is month-agnostic; only the grid layout depends on the
// displayed month.
func DueCalendar(txs []core.Transaction) map[int]DueDay {
	byDay := make(map[int]DueDay)
	for _, tx := range txs {
		if !tx.Recurring || tx.Type != core.Expense {
			continue
		}
		if tx.DueDay < 1 || tx.DueDay > 31 {
			continue
		}
		d := byDay[tx.DueDay]
		d.Day = tx.DueDay
		d.Bills = append(d.Bills, tx)
		d.Total.Cents += tx.Amount.Cents
		byDay[tx.DueDay] = d
	}
	return byDay
}

// CalendarCell is one cell of the rendered month grid. Day 0 marks a blank
// padding cell.
type CalendarCell struct {
	Day   int                `json:"day"`
	Bills []core.Transaction `json:"bills,omitempty"`
	Total core.Money         `json:"total"`
}

// MonthGrid lays the due-day index onto a 7-column grid for the displayed
// month: leading blanks for the weekday offset of day 1 (weeks start on
// Sunday), trailing blanks to complete the final week, and no bleed into the
// neighboring months. A due day beyond the month's length never appears.
func MonthGrid(year int, month time.Month, byDay map[int]DueDay) [][]CalendarCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	offset := int(first.Weekday())

	var weeks [][]CalendarCell
	week := make([]CalendarCell, 0, 7)
	for i := 0; i < offset; i++ {
		week = append(week, CalendarCell{})
	}
	for day := 1; day <= daysInMonth; day++ {
		cell := CalendarCell{Day: day}
		if d, ok := byDay[day]; ok {
			cell.Bills = d.Bills
			cell.Total = d.Total
		}
		week = append(week, cell)
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]CalendarCell, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, CalendarCell{})
		}
		weeks = append(weeks, week)
	}
	return weeks
}
