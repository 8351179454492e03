package model

import "time"

// MemberSchedule is a recurring weekly booking tied to a membership
// package.  Each row claims one contiguous hour range on one weekday
// of one field, valid between StartDate and EndDate inclusive.  A
// logical member (a futsal community, a company team) may own several
// rows, one per weekly day/time, grouped by (MemberName,
// ContactName, FieldID) for display, but each row is an independent
// schedule as far as conflicts are concerned.
//
// Rows are never expanded into per-date bookings; the availability
// engine evaluates the rule on demand for any requested date.
type MemberSchedule struct {
	ID          uint64    // member_schedules.id
	MemberName  string    // member_schedules.member_name
	ContactName string    // member_schedules.contact_name
	FieldID     uint64    // member_schedules.field_id
	DayOfWeek   string    // member_schedules.day_of_week (MONDAY..SUNDAY)
	StartHour   int       // member_schedules.start_hour
	EndHour     int       // member_schedules.end_hour (exclusive)
	PackageType string    // member_schedules.package_type (duration tier label)
	StartDate   time.Time // member_schedules.start_date (membership window, inclusive)
	EndDate     time.Time // member_schedules.end_date (inclusive)
	IsActive    bool      // member_schedules.is_active
	CreatedAt   time.Time // member_schedules.created_at
	UpdatedAt   time.Time // member_schedules.updated_at
}

// dayNames maps time.Weekday to the uppercase names stored in the
// day_of_week column.
var dayNames = map[time.Weekday]string{
	time.Monday:    "MONDAY",
	time.Tuesday:   "TUESDAY",
	time.Wednesday: "WEDNESDAY",
	time.Thursday:  "THURSDAY",
	time.Friday:    "FRIDAY",
	time.Saturday:  "SATURDAY",
	time.Sunday:    "SUNDAY",
}

// DayName converts a time.Weekday into the stored day_of_week value.
func DayName(d time.Weekday) string { return dayNames[d] }

// ValidDayName reports whether s is one of the seven stored weekday names.
func ValidDayName(s string) bool {
	for _, n := range dayNames {
		if n == s {
			return true
		}
	}
	return false
}

// AppliesOn reports whether this schedule occupies its hour range on
// the given calendar date: the schedule must be active, the weekday
// must match and the date must fall inside the validity window.
func (m *MemberSchedule) AppliesOn(date time.Time) bool {
	if !m.IsActive {
		return false
	}
	if DayName(date.Weekday()) != m.DayOfWeek {
		return false
	}
	d := date.Truncate(24 * time.Hour)
	return !d.Before(m.StartDate.Truncate(24*time.Hour)) && !d.After(m.EndDate.Truncate(24*time.Hour))
}

// CoversHour reports whether the schedule occupies the slot starting
// at hour h on days it applies.
func (m *MemberSchedule) CoversHour(h int) bool { return h >= m.StartHour && h < m.EndHour }
