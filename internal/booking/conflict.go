package booking

import (
	"time"

	"github.com/danuarta/field-booking/internal/model"
)

// CheckRange walks the hours of [startHour, endHour) over a day's
// computed slots and fails fast on the first one that is not
// available.  excludeReservationID lets a reschedule ignore the
// reservation's own current occupancy; pass zero otherwise.
//
// The hour range must already have passed ValidateHourRange.
func CheckRange(slots []Slot, startHour, endHour int, excludeReservationID uint64) error {
	for h := startHour; h < endHour; h++ {
		s := slotAt(slots, h)
		if s == nil {
			return &ValidationError{Field: "hour", Reason: "outside operating hours"}
		}
		switch s.Status {
		case SlotAvailable:
			continue
		case SlotMember:
			return &ConflictError{
				Hour:        h,
				With:        OccupantMember,
				MemberName:  s.MemberName,
				ContactName: s.ContactName,
			}
		default: // booked, possibly just a past hour with no occupant
			if s.ReservationID != 0 && s.ReservationID == excludeReservationID {
				continue
			}
			return &ConflictError{
				Hour:          h,
				With:          OccupantReservation,
				ReservationID: s.ReservationID,
			}
		}
	}
	return nil
}

// CheckMemberCandidate validates a proposed member schedule against
// the field's existing recurring schedules and one-off reservations.
// Unlike CheckRange it reasons about the weekly rule itself instead of
// one concrete date, because the rule claims every matching weekday in
// its validity window.  excludeScheduleID lets an edit ignore the row
// being edited; pass zero on creation.
//
// A reservation conflicts when its play date falls on the candidate's
// weekday inside the validity window and its hours overlap.  Another
// member schedule conflicts when it is active on the same field and
// weekday with overlapping hours and overlapping validity windows.
func CheckMemberCandidate(cand model.MemberSchedule, others []model.MemberSchedule, reservations []model.Reservation, excludeScheduleID uint64) error {
	if err := ValidateHourRange(cand.StartHour, cand.EndHour); err != nil {
		return err
	}
	if !model.ValidDayName(cand.DayOfWeek) {
		return &ValidationError{Field: "day_of_week", Reason: "must be MONDAY..SUNDAY"}
	}
	if cand.EndDate.Before(cand.StartDate) {
		return &ValidationError{Field: "end_date", Reason: "must not precede start_date"}
	}
	for i := range others {
		o := &others[i]
		if o.ID == excludeScheduleID || !o.IsActive || o.FieldID != cand.FieldID || o.DayOfWeek != cand.DayOfWeek {
			continue
		}
		if !HoursOverlap(cand.StartHour, cand.EndHour, o.StartHour, o.EndHour) {
			continue
		}
		if !DateWindowsOverlap(cand.StartDate, cand.EndDate, o.StartDate, o.EndDate) {
			continue
		}
		return &ConflictError{
			Hour:        maxInt(cand.StartHour, o.StartHour),
			With:        OccupantMember,
			MemberName:  o.MemberName,
			ContactName: o.ContactName,
		}
	}
	for i := range reservations {
		r := &reservations[i]
		if r.ReservationStatus.IsTerminal() || r.FieldID != cand.FieldID {
			continue
		}
		if model.DayName(r.PlayDate.Weekday()) != cand.DayOfWeek {
			continue
		}
		if !withinWindow(r.PlayDate, cand.StartDate, cand.EndDate) {
			continue
		}
		if !HoursOverlap(cand.StartHour, cand.EndHour, r.StartHour, r.EndHour) {
			continue
		}
		return &ConflictError{
			Hour:          maxInt(cand.StartHour, r.StartHour),
			With:          OccupantReservation,
			ReservationID: r.ID,
		}
	}
	return nil
}

// withinWindow reports whether date falls inside the inclusive window.
func withinWindow(date, start, end time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(start.Truncate(24*time.Hour)) && !d.After(end.Truncate(24*time.Hour))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
