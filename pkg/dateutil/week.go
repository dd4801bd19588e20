package dateutil

// Week bucketing for affiliate earnings. Weeks are counted from a fixed
// anchor chosen so that every boundary lands on the same weekday, and the
// release cutoff falls at Wednesday 23:59:59 GMT within each week.
const (
	SecondsPerWeek  int64 = 604800
	EpochStart      int64 = 345600
	WednesdayOffset int64 = 259199
)

// CurrentWeek returns the week index of a Unix timestamp. Timestamps before
// EpochStart are a precondition violation, the result is undefined.
func CurrentWeek(ts int64) uint64 {
	return uint64((ts - EpochStart) / SecondsPerWeek)
}

// IsAfterRelease reports whether the timestamp has passed the release cutoff
// of its own week, at which point the current week's affiliate earnings
// become claimable early.
func IsAfterRelease(ts int64) bool {
	return (ts-EpochStart)%SecondsPerWeek >= WednesdayOffset
}
