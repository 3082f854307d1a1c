package utils

import "time"

const DateLayout = "2006-01-02"

// Korea time location (KST, +09:00). Billing dates and daily-report
// gating all use the KST calendar day.
var kstLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Seoul"); err == nil {
		return loc
	}
	return time.FixedZone("KST", 9*3600)
}()

func KST() *time.Location { return kstLoc }

// Today returns the current KST calendar date as YYYY-MM-DD.
func Today() string {
	return time.Now().In(kstLoc).Format(DateLayout)
}

// DayBounds returns the unix-second range [start, end) covering the
// given KST calendar date.
func DayBounds(date string) (int64, int64, error) {
	t, err := time.ParseInLocation(DateLayout, date, kstLoc)
	if err != nil {
		return 0, 0, err
	}
	start := t
	end := t.AddDate(0, 0, 1)
	return start.Unix(), end.Unix(), nil
}

// AddMonthClamped advances a YYYY-MM-DD date by one calendar month,
// clamping to the last day of the target month instead of letting the
// overflow spill into the following month (2024-01-31 -> 2024-02-29).
func AddMonthClamped(date string) (string, error) {
	t, err := time.ParseInLocation(DateLayout, date, kstLoc)
	if err != nil {
		return "", err
	}

	year, month, day := t.Date()
	month++
	if month > time.December {
		month = time.January
		year++
	}
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, kstLoc).Format(DateLayout), nil
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, kstLoc).Day()
}
