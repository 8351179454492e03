package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/danuarta/field-booking/internal/model"
)

func TestCheckRangeAgainstMemberSlot(t *testing.T) {
	// Booking 09:00-11:00 where an active member holds 09:00-10:00 on
	// the matching weekday must fail with a member conflict.
	d := date(2026, time.September, 7) // Monday
	now := date(2026, time.September, 1)
	ms := []model.MemberSchedule{sched(3, "MONDAY", 9, 10, date(2026, time.January, 1), date(2026, time.December, 31))}
	slots := BuildDaySlots(d, nil, ms, now)

	err := CheckRange(slots, 9, 11, 0)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("CheckRange = %v, want ConflictError", err)
	}
	if conflict.With != OccupantMember {
		t.Fatalf("conflict.With = %q, want member", conflict.With)
	}
	if conflict.Hour != 9 || conflict.MemberName != "FC Garuda" {
		t.Fatalf("conflict = %+v, want hour 9 held by FC Garuda", conflict)
	}
}

func TestCheckRangeAgainstReservation(t *testing.T) {
	d := date(2026, time.September, 7)
	now := date(2026, time.September, 1)
	rs := []model.Reservation{res(17, d, 10, 12, model.ReservationDPPaid)}
	slots := BuildDaySlots(d, rs, nil, now)

	err := CheckRange(slots, 11, 13, 0)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("CheckRange = %v, want ConflictError", err)
	}
	if conflict.With != OccupantReservation || conflict.ReservationID != 17 || conflict.Hour != 11 {
		t.Fatalf("conflict = %+v, want reservation 17 at hour 11", conflict)
	}
}

func TestCheckRangeFreeRangePasses(t *testing.T) {
	d := date(2026, time.September, 7)
	now := date(2026, time.September, 1)
	rs := []model.Reservation{res(17, d, 10, 12, model.ReservationPending)}
	slots := BuildDaySlots(d, rs, nil, now)
	if err := CheckRange(slots, 12, 14, 0); err != nil {
		t.Fatalf("CheckRange on free range = %v, want nil", err)
	}
}

func TestCheckRangeExcludesOwnReservationOnReschedule(t *testing.T) {
	d := date(2026, time.September, 7)
	now := date(2026, time.September, 1)
	rs := []model.Reservation{res(17, d, 10, 12, model.ReservationDPPaid)}
	slots := BuildDaySlots(d, rs, nil, now)

	// Moving reservation 17 one hour later overlaps its own current
	// slots; that overlap must be ignored.
	if err := CheckRange(slots, 11, 13, 17); err != nil {
		t.Fatalf("CheckRange excluding own id = %v, want nil", err)
	}
	// Another booker still conflicts.
	if err := CheckRange(slots, 11, 13, 99); err == nil {
		t.Fatal("CheckRange for a different booker = nil, want conflict")
	}
}

func TestCheckRangePastSlotConflicts(t *testing.T) {
	d := date(2026, time.September, 7)
	now := time.Date(2026, time.September, 7, 10, 0, 0, 0, time.UTC)
	slots := BuildDaySlots(d, nil, nil, now)

	err := CheckRange(slots, 9, 11, 0)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("CheckRange over past hours = %v, want ConflictError", err)
	}
	if conflict.ReservationID != 0 {
		t.Fatalf("past-slot conflict carries reservation id %d", conflict.ReservationID)
	}
}

func TestCheckMemberCandidate(t *testing.T) {
	jan1 := date(2026, time.January, 1)
	dec31 := date(2026, time.December, 31)
	existing := []model.MemberSchedule{sched(5, "MONDAY", 18, 20, jan1, dec31)}
	monday := date(2026, time.September, 7)

	cases := []struct {
		name     string
		cand     model.MemberSchedule
		others   []model.MemberSchedule
		resv     []model.Reservation
		exclude  uint64
		wantWith string // "" = no conflict expected
	}{
		{
			name:     "member vs member same weekday overlap",
			cand:     sched(0, "MONDAY", 19, 21, jan1, dec31),
			others:   existing,
			wantWith: OccupantMember,
		},
		{
			name:   "different weekday passes",
			cand:   sched(0, "TUESDAY", 18, 20, jan1, dec31),
			others: existing,
		},
		{
			name:   "disjoint hours pass",
			cand:   sched(0, "MONDAY", 20, 22, jan1, dec31),
			others: existing,
		},
		{
			name:   "disjoint validity windows pass",
			cand:   sched(0, "MONDAY", 18, 20, date(2027, time.January, 1), date(2027, time.June, 30)),
			others: existing,
		},
		{
			name:    "editing the row itself passes",
			cand:    sched(5, "MONDAY", 18, 20, jan1, dec31),
			others:  existing,
			exclude: 5,
		},
		{
			name:     "member vs existing reservation",
			cand:     sched(0, "MONDAY", 9, 11, jan1, dec31),
			resv:     []model.Reservation{res(21, monday, 10, 12, model.ReservationPending)},
			wantWith: OccupantReservation,
		},
		{
			name: "terminal reservation ignored",
			cand: sched(0, "MONDAY", 9, 11, jan1, dec31),
			resv: []model.Reservation{res(21, monday, 10, 12, model.ReservationCancelled)},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckMemberCandidate(tc.cand, tc.others, tc.resv, tc.exclude)
			if tc.wantWith == "" {
				if err != nil {
					t.Fatalf("CheckMemberCandidate = %v, want nil", err)
				}
				return
			}
			var conflict *ConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("CheckMemberCandidate = %v, want ConflictError", err)
			}
			if conflict.With != tc.wantWith {
				t.Fatalf("conflict.With = %q, want %q", conflict.With, tc.wantWith)
			}
		})
	}
}

func TestCheckMemberCandidateRejectsMalformedInput(t *testing.T) {
	jan1 := date(2026, time.January, 1)
	bad := sched(0, "MONDAY", 18, 18, jan1, jan1)
	var vErr *ValidationError
	if err := CheckMemberCandidate(bad, nil, nil, 0); !errors.As(err, &vErr) {
		t.Fatalf("zero-length range: got %v, want ValidationError", err)
	}
	badDay := sched(0, "MOONDAY", 18, 20, jan1, jan1)
	if err := CheckMemberCandidate(badDay, nil, nil, 0); !errors.As(err, &vErr) {
		t.Fatalf("bad weekday: got %v, want ValidationError", err)
	}
	inverted := sched(0, "MONDAY", 18, 20, date(2026, time.June, 1), jan1)
	if err := CheckMemberCandidate(inverted, nil, nil, 0); !errors.As(err, &vErr) {
		t.Fatalf("inverted window: got %v, want ValidationError", err)
	}
}
