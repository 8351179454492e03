package booking

import (
	"time"

	"github.com/danuarta/field-booking/internal/model"
)

// Operating hours of every field.  The day is divided into one-hour
// slots starting on the hour: 08:00-09:00 up to 21:00-22:00.
const (
	OpenHour  = 8  // first bookable slot starts at 08:00
	CloseHour = 22 // last slot ends at 22:00
	SlotCount = CloseHour - OpenHour
)

// Slot occupancy labels.
const (
	SlotAvailable = "available" // free and bookable
	SlotBooked    = "booked"    // taken by a reservation, or in the past
	SlotMember    = "member"    // taken by a recurring member schedule
)

// Occupant type names used in ConflictError.With.
const (
	OccupantReservation = "reservation"
	OccupantMember      = "member"
)

// Slot describes the occupancy of a single one-hour unit of a field's
// day.  Exactly one of the occupant fields is populated depending on
// Status: ReservationID for booked slots, MemberName/ContactName for
// member slots.  A past slot with no explicit occupant reports
// Status=booked with no occupant at all, so it can never be booked
// retroactively.
type Slot struct {
	Hour          int    `json:"hour"`                     // slot start hour (8..21)
	Status        string `json:"status"`                   // available | booked | member
	ReservationID uint64 `json:"reservation_id,omitempty"` // occupying reservation, if any
	MemberName    string `json:"member_name,omitempty"`    // occupying member schedule, if any
	ContactName   string `json:"contact_name,omitempty"`   // member contact person, if any
}

// SlotStart returns the instant the slot beginning at hour starts on
// the given date, in the date's location.
func SlotStart(date time.Time, hour int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
}

// slotPast reports whether the slot starting at hour on date has
// already begun at instant now.  A slot that has started is no longer
// bookable even if the hour has not fully elapsed.
func slotPast(date time.Time, hour int, now time.Time) bool {
	return !SlotStart(date, hour).After(now)
}

// BuildDaySlots computes the full occupancy of one field's day: one
// Slot per operating hour, in order.  The caller supplies every
// reservation on that field and date (any status; terminal ones are
// skipped here) and every member schedule attached to the field; the
// engine decides which of them actually claim slots.
//
// Rules, in application order:
//  1. Reservations whose status is not terminal mark their covered
//     hours as booked.
//  2. Member schedules that apply on the date mark their hours as
//     member.  Member wins over booked when historical data left both
//     on the same hour: the recurring contract must stay visible.
//  3. Any hour still available whose start has passed is reported as
//     booked with no occupant, so past slots never read as bookable.
func BuildDaySlots(date time.Time, reservations []model.Reservation, schedules []model.MemberSchedule, now time.Time) []Slot {
	slots := make([]Slot, SlotCount)
	for i := range slots {
		slots[i] = Slot{Hour: OpenHour + i, Status: SlotAvailable}
	}
	for i := range reservations {
		r := &reservations[i]
		if r.ReservationStatus.IsTerminal() {
			continue
		}
		for h := r.StartHour; h < r.EndHour; h++ {
			if s := slotAt(slots, h); s != nil {
				s.Status = SlotBooked
				s.ReservationID = r.ID
			}
		}
	}
	for i := range schedules {
		m := &schedules[i]
		if !m.AppliesOn(date) {
			continue
		}
		for h := m.StartHour; h < m.EndHour; h++ {
			if s := slotAt(slots, h); s != nil {
				// member precedence: overwrite even a booked slot
				s.Status = SlotMember
				s.ReservationID = 0
				s.MemberName = m.MemberName
				s.ContactName = m.ContactName
			}
		}
	}
	for i := range slots {
		if slots[i].Status == SlotAvailable && slotPast(date, slots[i].Hour, now) {
			slots[i].Status = SlotBooked
		}
	}
	return slots
}

// slotAt returns a pointer into slots for the slot starting at hour,
// or nil when the hour lies outside operating time.
func slotAt(slots []Slot, hour int) *Slot {
	if hour < OpenHour || hour >= CloseHour {
		return nil
	}
	return &slots[hour-OpenHour]
}

// ValidateHourRange checks that [startHour, endHour) is a well-formed
// slot range inside operating hours.  Hour alignment is implied by the
// integer representation; what remains is ordering and bounds.
func ValidateHourRange(startHour, endHour int) error {
	if startHour < OpenHour || startHour >= CloseHour {
		return &ValidationError{Field: "start_hour", Reason: "must be between 08:00 and 21:00"}
	}
	if endHour <= OpenHour || endHour > CloseHour {
		return &ValidationError{Field: "end_hour", Reason: "must be between 09:00 and 22:00"}
	}
	if startHour >= endHour {
		return &ValidationError{Field: "end_hour", Reason: "must be after start_hour"}
	}
	return nil
}

// HoursOverlap reports whether two half-open hour ranges intersect.
func HoursOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// DateWindowsOverlap reports whether two inclusive date windows
// intersect.  Only the calendar date part of the arguments matters.
func DateWindowsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
