package engine

import (
	"time"
)

// =============================================================================
// DATE - Day-granular time abstraction (all legal deadlines are whole days)
// =============================================================================

// Date is a calendar day in UTC. Interest accrual, rate effectiveness and
// payment timing are all day-granular in this domain; hours never matter.
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t.UTC()}, nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{Time: d.Time.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// =============================================================================
// CYCLE BOUNDARIES - Used by compound-mode capitalization
// =============================================================================

// EndOfMonth returns the last day of d's month.
func (d Date) EndOfMonth() Date {
	first := NewDate(d.Year(), d.Month(), 1)
	return first.AddMonths(1).AddDays(-1)
}

// EndOfQuarter returns the last day of d's calendar quarter.
func (d Date) EndOfQuarter() Date {
	q := (int(d.Month()) - 1) / 3
	lastMonth := time.Month(q*3 + 3)
	return NewDate(d.Year(), lastMonth, 1).EndOfMonth()
}

// EndOfYear returns December 31 of d's year.
func (d Date) EndOfYear() Date {
	return NewDate(d.Year(), time.December, 31)
}
