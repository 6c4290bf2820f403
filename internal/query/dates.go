package query

import "time"

const (
	BucketToday     = "today"
	BucketYesterday = "yesterday"
	BucketTomorrow  = "tomorrow"
	BucketThisWeek  = "this-week"
	BucketNextWeek  = "next-week"
	BucketPastWeek  = "past-week"
	BucketPastMonth = "past-month"
	BucketOverdue   = "overdue"
	BucketNoDate    = "no-date"
)

// DueBuckets lists the buckets produced by ClassifyDue in display order.
var DueBuckets = []string{
	BucketOverdue,
	BucketToday,
	BucketTomorrow,
	BucketThisWeek,
	BucketNextWeek,
	BucketNoDate,
}

// CreatedBuckets lists the buckets used for past-facing dates such as a
// note's creation time.
var CreatedBuckets = []string{
	BucketToday,
	BucketYesterday,
	BucketPastWeek,
	BucketPastMonth,
}

// Classify places date into every calendar bucket it belongs to relative to
// now. All comparisons use calendar days in now's location.
func Classify(date *time.Time, now time.Time) []string {
	if date == nil {
		return []string{BucketNoDate}
	}

	loc := now.Location()
	today := dayNumber(now, loc)
	day := dayNumber(*date, loc)

	buckets := make([]string, 0, 4)
	switch day - today {
	case 0:
		buckets = append(buckets, BucketToday)
	case -1:
		buckets = append(buckets, BucketYesterday)
	case 1:
		buckets = append(buckets, BucketTomorrow)
	}

	weekEnd := today + (7 - int(now.In(loc).Weekday()))
	if day >= today && day <= weekEnd {
		buckets = append(buckets, BucketThisWeek)
	}
	if day > weekEnd && day <= weekEnd+7 {
		buckets = append(buckets, BucketNextWeek)
	}

	if day <= today && day >= today-7 {
		buckets = append(buckets, BucketPastWeek)
	}
	y, m, d := now.In(loc).Date()
	monthAgo := dayNumber(time.Date(y, m-1, d, 0, 0, 0, 0, loc), loc)
	if day <= today && day >= monthAgo {
		buckets = append(buckets, BucketPastMonth)
	}

	return buckets
}

// ClassifyDue is Classify for deadlines: a date on a calendar day before
// today is also overdue unless the work is completed.
func ClassifyDue(date *time.Time, completed bool, now time.Time) []string {
	buckets := Classify(date, now)
	if date == nil || completed {
		return buckets
	}
	loc := now.Location()
	if dayNumber(*date, loc) < dayNumber(now, loc) {
		buckets = append(buckets, BucketOverdue)
	}
	return buckets
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return dayNumber(a, loc) == dayNumber(b, loc)
}

// The bounds are calendar days in their own location; date is an instant
// read in loc.
func (r DateRange) contains(date time.Time, loc *time.Location) bool {
	day := dayNumber(date, loc)
	if r.From != nil && day < dayNumber(*r.From, r.From.Location()) {
		return false
	}
	if r.To != nil && day > dayNumber(*r.To, r.To.Location()) {
		return false
	}
	return true
}

// dayNumber maps the calendar date of t in loc to a day index, so that
// subtracting two indexes counts calendar days regardless of DST shifts.
func dayNumber(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
