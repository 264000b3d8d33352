package report

import (
	"testing"
	"time"

	"finbook/internal/core"
)

func dueBill(desc string, cents int64, day int) core.Transaction {
	return core.Transaction{
		Description: desc,
		Type:        core.Expense,
		Amount:      core.Money{Cents: cents},
		Recurring:   true,
		DueDay:      day,
		CreatedAt:   time.Now(),
	}
}

func TestDueCalendar(t *testing.T) {
	txs := []core.Transaction{
		dueBill("Rent", 120000, 1),
		dueBill("Electricity", 8000, 15),
		dueBill("Internet", 4000, 15),
		dueBill("Gym", 3000, 0), // no due day, excluded
		tx("Groceries", core.Expense, 5000),
	}
	byDay := DueCalendar(txs)
	if len(byDay) != 2 {
		t.Fatalf("expected 2 due days, got %d", len(byDay))
	}
	if d := byDay[15]; len(d.Bills) != 2 || d.Total.Cents != 12000 {
		t.Fatalf("day 15: %+v", d)
	}
	if d := byDay[1]; len(d.Bills) != 1 || d.Total.Cents != 120000 {
		t.Fatalf("day 1: %+v", d)
	}
}

func TestMonthGridLayout(t *testing.T) {
	// August 2026 starts on a Saturday and has 31 days.
	grid := MonthGrid(2026, time.August, nil)

	if len(grid) != 6 {
		t.Fatalf("expected 6 weeks, got %d", len(grid))
	}
	for i, week := range grid {
		if len(week) != 7 {
			t.Fatalf("week %d has %d cells", i, len(week))
		}
	}

	// Six leading blanks before Saturday the 1st.
	for i := 0; i < 6; i++ {
		if grid[0][i].Day != 0 {
			t.Fatalf("cell %d should be blank, got day %d", i, grid[0][i].Day)
		}
	}
	if grid[0][6].Day != 1 {
		t.Fatalf("first day cell: expected 1, got %d", grid[0][6].Day)
	}

	// Day 31 is a Monday; the rest of the last week is blank padding.
	last := grid[5]
	if last[1].Day != 31 {
		t.Fatalf("expected day 31 at monday slot, got %d", last[1].Day)
	}
	for i := 2; i < 7; i++ {
		if last[i].Day != 0 {
			t.Fatalf("trailing cell %d should be blank, got %d", i, last[i].Day)
		}
	}
}

func TestMonthGridAttachesBills(t *testing.T) {
	byDay := DueCalendar([]core.Transaction{dueBill("Rent", 120000, 15)})
	grid := MonthGrid(2026, time.August, byDay)

	var found bool
	for _, week := range grid {
		for _, cell := range week {
			if cell.Day == 15 {
				found = true
				if len(cell.Bills) != 1 || cell.Total.Cents != 120000 {
					t.Fatalf("day 15 cell: %+v", cell)
				}
			} else if len(cell.Bills) != 0 {
				t.Fatalf("day %d should carry no bills", cell.Day)
			}
		}
	}
	if !found {
		t.Fatal("day 15 not present in grid")
	}
}

// A due day beyond the displayed month's length never appears in the grid.
func TestMonthGridShortMonth(t *testing.T) {
	byDay := DueCalendar([]core.Transaction{dueBill("Rent", 120000, 31)})
	grid := MonthGrid(2026, time.February, byDay)

	for _, week := range grid {
		for _, cell := range week {
			if cell.Day > 28 {
				t.Fatalf("february 2026 has 28 days, found day %d", cell.Day)
			}
		}
	}
}
