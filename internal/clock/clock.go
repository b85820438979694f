package clock

import "time"

// Clock supplies current time in the bot's reporting timezone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// Fixed is a Clock pinned to a single timezone.
type Fixed struct {
	loc *time.Location
}

// NewFixed loads the named timezone. If tzdata is unavailable the
// clock falls back to a fixed UTC+3 offset, matching the default
// reporting zone.
func NewFixed(name string) *Fixed {
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.FixedZone("UTC+3", 3*60*60)
	}
	return &Fixed{loc: loc}
}

func (c *Fixed) Now() time.Time           { return time.Now().In(c.loc) }
func (c *Fixed) Location() *time.Location { return c.loc }

// MonthWindow returns the half-open [start, end) calendar-month
// interval containing t, in t's location.
func MonthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0)
	return start, end
}

// PrevMonthWindow returns the window of the calendar month preceding
// the one containing t.
func PrevMonthWindow(t time.Time) (time.Time, time.Time) {
	start, _ := MonthWindow(t)
	return MonthWindow(start.Add(-time.Second))
}

// MonthKey formats t's calendar month as "YYYY-MM". Used as the dedup
// tag for monthly reports.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
