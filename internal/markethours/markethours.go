// Package markethours implements the Casablanca Stock Exchange trading
// window: 9:30 AM – 3:20 PM Morocco time, Monday to Friday, excluding
// exchange holidays.
package markethours

import (
	"fmt"
	"time"
)

// Casablanca is the exchange timezone. Falls back to a fixed UTC+1 zone when
// the system timezone database is unavailable.
var Casablanca = loadCasablanca()

func loadCasablanca() *time.Location {
	if loc, err := time.LoadLocation("Africa/Casablanca"); err == nil {
		return loc
	}
	return time.FixedZone("+01", 3600)
}

// Default trading window bounds in Casablanca local time.
const (
	OpenHour    = 9
	OpenMinute  = 30
	CloseHour   = 15
	CloseMinute = 20
)

// Window is a configurable trading window. The close bound is inclusive:
// a quote at exactly CloseHour:CloseMinute is still in session.
type Window struct {
	OpenHour    int
	OpenMinute  int
	CloseHour   int
	CloseMinute int
	Loc         *time.Location
}

// DefaultWindow returns the standard CSE window.
func DefaultWindow() Window {
	return Window{
		OpenHour:    OpenHour,
		OpenMinute:  OpenMinute,
		CloseHour:   CloseHour,
		CloseMinute: CloseMinute,
		Loc:         Casablanca,
	}
}

// IsOpen reports whether t falls inside the trading window on a trading day.
// Weekends are always closed regardless of time.
func (w Window) IsOpen(t time.Time) bool {
	local := t.In(w.Loc)
	wd := local.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	if IsHoliday(local) {
		return false
	}
	hm := local.Hour()*60 + local.Minute()
	return hm >= w.OpenHour*60+w.OpenMinute && hm <= w.CloseHour*60+w.CloseMinute
}

// IsMarketOpen reports whether t is inside the default CSE window.
func IsMarketOpen(t time.Time) bool {
	return DefaultWindow().IsOpen(t)
}

// IsWeekday returns true if t is Mon–Fri in Casablanca time.
func IsWeekday(t time.Time) bool {
	wd := t.In(Casablanca).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay returns true if t is a weekday and not an exchange holiday.
func IsTradingDay(t time.Time) bool {
	local := t.In(Casablanca)
	return IsWeekday(local) && !IsHoliday(local)
}

// NextOpen returns the next session open (9:30 AM Casablanca on the next
// trading day). If t is before today's open on a trading day, returns
// today's open.
func (w Window) NextOpen(t time.Time) time.Time {
	local := t.In(w.Loc)

	todayOpen := time.Date(local.Year(), local.Month(), local.Day(), w.OpenHour, w.OpenMinute, 0, 0, w.Loc)
	if local.Before(todayOpen) && IsTradingDay(local) {
		return todayOpen
	}

	d := local.AddDate(0, 0, 1)
	for i := 0; i < 10; i++ { // holidays + weekends never span 10 days
		if IsTradingDay(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), w.OpenHour, w.OpenMinute, 0, 0, w.Loc)
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(local.Year(), local.Month(), local.Day()+1, w.OpenHour, w.OpenMinute, 0, 0, w.Loc)
}

// StatusString returns a human-readable market status for the given time.
func (w Window) StatusString(t time.Time) string {
	if w.IsOpen(t) {
		local := t.In(w.Loc)
		closeAt := time.Date(local.Year(), local.Month(), local.Day(), w.CloseHour, w.CloseMinute, 0, 0, w.Loc)
		return fmt.Sprintf("Market Open - closes in %s", fmtDur(closeAt.Sub(local)))
	}
	next := w.NextOpen(t)
	local := next.In(w.Loc)
	return fmt.Sprintf("Market Closed - opens %s %s (%s)",
		local.Weekday().String()[:3], local.Format("15:04"), fmtDur(next.Sub(t)))
}

func fmtDur(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
