package booking

import (
	"testing"
	"time"

	"github.com/danuarta/field-booking/internal/model"
)

// date builds a UTC calendar date.
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// res builds a reservation occupying [start, end) on the given date.
func res(id uint64, d time.Time, start, end int, status model.ReservationStatus) model.Reservation {
	return model.Reservation{
		ID:                id,
		FieldID:           1,
		PlayDate:          d,
		StartHour:         start,
		EndHour:           end,
		ReservationStatus: status,
	}
}

// sched builds an active weekly member schedule.
func sched(id uint64, day string, start, end int, from, to time.Time) model.MemberSchedule {
	return model.MemberSchedule{
		ID:          id,
		MemberName:  "FC Garuda",
		ContactName: "Budi",
		FieldID:     1,
		DayOfWeek:   day,
		StartHour:   start,
		EndHour:     end,
		StartDate:   from,
		EndDate:     to,
		IsActive:    true,
	}
}

func TestBuildDaySlotsEmptyDayAllAvailable(t *testing.T) {
	d := date(2026, time.September, 7) // a Monday, in the future
	now := date(2026, time.September, 1)
	slots := BuildDaySlots(d, nil, nil, now)
	if len(slots) != SlotCount {
		t.Fatalf("expected %d slots, got %d", SlotCount, len(slots))
	}
	for i, s := range slots {
		if s.Hour != OpenHour+i {
			t.Errorf("slot %d: hour = %d, want %d", i, s.Hour, OpenHour+i)
		}
		if s.Status != SlotAvailable {
			t.Errorf("slot %02d:00: status = %q, want available", s.Hour, s.Status)
		}
	}
}

func TestBuildDaySlotsReservationMarksBooked(t *testing.T) {
	d := date(2026, time.September, 7)
	now := date(2026, time.September, 1)
	rs := []model.Reservation{res(42, d, 10, 12, model.ReservationPending)}
	slots := BuildDaySlots(d, rs, nil, now)
	for _, s := range slots {
		switch {
		case s.Hour == 10 || s.Hour == 11:
			if s.Status != SlotBooked || s.ReservationID != 42 {
				t.Errorf("slot %02d:00 = %+v, want booked by 42", s.Hour, s)
			}
		default:
			if s.Status != SlotAvailable {
				t.Errorf("slot %02d:00 = %q, want available", s.Hour, s.Status)
			}
		}
	}
}

func TestBuildDaySlotsTerminalReservationFreesSlot(t *testing.T) {
	d := date(2026, time.September, 7)
	now := date(2026, time.September, 1)
	for _, st := range []model.ReservationStatus{model.ReservationRejected, model.ReservationCancelled} {
		slots := BuildDaySlots(d, []model.Reservation{res(7, d, 9, 10, st)}, nil, now)
		if got := slots[9-OpenHour].Status; got != SlotAvailable {
			t.Errorf("status %s: slot 09:00 = %q, want available", st, got)
		}
	}
}

func TestBuildDaySlotsMemberOccupancy(t *testing.T) {
	d := date(2026, time.September, 7) // Monday
	now := date(2026, time.September, 1)
	ms := []model.MemberSchedule{sched(1, "MONDAY", 18, 20, date(2026, time.January, 1), date(2026, time.December, 31))}
	slots := BuildDaySlots(d, nil, ms, now)
	for h := 18; h < 20; h++ {
		s := slots[h-OpenHour]
		if s.Status != SlotMember || s.MemberName != "FC Garuda" || s.ContactName != "Budi" {
			t.Errorf("slot %02d:00 = %+v, want member FC Garuda/Budi", h, s)
		}
	}
}

func TestBuildDaySlotsMemberRuleScope(t *testing.T) {
	now := date(2026, time.September, 1)
	window := sched(1, "MONDAY", 18, 20, date(2026, time.September, 7), date(2026, time.September, 21))
	cases := []struct {
		name string
		d    time.Time
		s    model.MemberSchedule
		want string
	}{
		{"weekday mismatch", date(2026, time.September, 8), window, SlotAvailable}, // a Tuesday
		{"before window", date(2026, time.August, 31), window, SlotBooked},         // Monday but past date: past rule bites
		{"window start inclusive", date(2026, time.September, 7), window, SlotMember},
		{"window end inclusive", date(2026, time.September, 21), window, SlotMember},
		{"after window", date(2026, time.September, 28), window, SlotAvailable},
		{"inactive rule", date(2026, time.September, 14), func() model.MemberSchedule {
			m := window
			m.IsActive = false
			return m
		}(), SlotAvailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slots := BuildDaySlots(tc.d, nil, []model.MemberSchedule{tc.s}, now)
			if got := slots[18-OpenHour].Status; got != tc.want {
				t.Fatalf("slot 18:00 on %s = %q, want %q", tc.d.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}

func TestBuildDaySlotsMemberWinsOverReservation(t *testing.T) {
	// Historical data may leave both a reservation and a member rule on
	// the same hour; the recurring contract must stay visible.
	d := date(2026, time.September, 7)
	now := date(2026, time.September, 1)
	rs := []model.Reservation{res(9, d, 18, 19, model.ReservationPending)}
	ms := []model.MemberSchedule{sched(1, "MONDAY", 18, 19, date(2026, time.January, 1), date(2026, time.December, 31))}
	s := BuildDaySlots(d, rs, ms, now)[18-OpenHour]
	if s.Status != SlotMember {
		t.Fatalf("slot 18:00 = %q, want member", s.Status)
	}
	if s.ReservationID != 0 {
		t.Fatalf("member slot still carries reservation id %d", s.ReservationID)
	}
}

func TestBuildDaySlotsPastHoursNeverAvailable(t *testing.T) {
	d := date(2026, time.September, 7)

	t.Run("entire past date", func(t *testing.T) {
		now := date(2026, time.September, 8)
		for _, s := range BuildDaySlots(d, nil, nil, now) {
			if s.Status != SlotBooked {
				t.Fatalf("slot %02d:00 = %q, want booked", s.Hour, s.Status)
			}
			if s.ReservationID != 0 {
				t.Fatalf("past slot carries occupant %d", s.ReservationID)
			}
		}
	})

	t.Run("today splits at the current hour", func(t *testing.T) {
		now := time.Date(2026, time.September, 7, 12, 30, 0, 0, time.UTC)
		for _, s := range BuildDaySlots(d, nil, nil, now) {
			want := SlotAvailable
			if s.Hour <= 12 { // the 12:00 slot has already started
				want = SlotBooked
			}
			if s.Status != want {
				t.Fatalf("slot %02d:00 = %q, want %q", s.Hour, s.Status, want)
			}
		}
	})
}

func TestValidateHourRange(t *testing.T) {
	cases := []struct {
		name       string
		start, end int
		wantErr    bool
	}{
		{"full day", 8, 22, false},
		{"single slot", 8, 9, false},
		{"last slot", 21, 22, false},
		{"before opening", 7, 9, true},
		{"past closing", 20, 23, true},
		{"start equals end", 10, 10, true},
		{"inverted", 12, 10, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateHourRange(tc.start, tc.end)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateHourRange(%d, %d) = %v, wantErr=%v", tc.start, tc.end, err, tc.wantErr)
			}
		})
	}
}
