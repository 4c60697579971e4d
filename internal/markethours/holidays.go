package markethours

import "time"

// CSE holidays for 2026 (Moroccan public holidays observed by the exchange).
// Islamic calendar dates are tentative until confirmed by moon sighting.
var cseHolidays2026 = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},   // New Year's Day
	{time.January, 11},  // Independence Manifesto Day
	{time.January, 14},  // Amazigh New Year
	{time.March, 20},    // Eid al-Fitr (tentative)
	{time.March, 21},    // Eid al-Fitr holiday (tentative)
	{time.May, 1},       // Labour Day
	{time.May, 27},      // Eid al-Adha (tentative)
	{time.May, 28},      // Eid al-Adha holiday (tentative)
	{time.June, 16},     // Hijri New Year (tentative)
	{time.July, 30},     // Throne Day
	{time.August, 14},   // Oued Ed-Dahab Day
	{time.August, 20},   // Revolution Day
	{time.August, 21},   // Youth Day
	{time.August, 25},   // Eid al-Mawlid (tentative)
	{time.August, 26},   // Eid al-Mawlid holiday (tentative)
	{time.November, 6},  // Green March Day
	{time.November, 18}, // Independence Day
}

// pre-compute for fast lookup
var holidaySet map[string]bool

func init() {
	holidaySet = make(map[string]bool, len(cseHolidays2026))
	for _, h := range cseHolidays2026 {
		holidaySet[dateKey(2026, h.month, h.day)] = true
	}
}

// IsHoliday returns true if the date (in Casablanca time) is an exchange
// holiday.
func IsHoliday(t time.Time) bool {
	local := t.In(Casablanca)
	return holidaySet[dateKey(local.Year(), local.Month(), local.Day())]
}

func dateKey(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, Casablanca).Format("2006-01-02")
}
