package handler

import (
	"testing"
	"time"

	"github.com/danuarta/field-booking/internal/model"
)

func sched(id uint64, member, contact string, fieldID uint64, day string, start, end int) model.MemberSchedule {
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return model.MemberSchedule{
		ID:          id,
		MemberName:  member,
		ContactName: contact,
		FieldID:     fieldID,
		DayOfWeek:   day,
		StartHour:   start,
		EndHour:     end,
		PackageType: "3-bulan",
		StartDate:   from,
		EndDate:     from.AddDate(0, 3, 0),
		IsActive:    true,
	}
}

func TestGroupSchedules(t *testing.T) {
	cases := []struct {
		name  string
		items []model.MemberSchedule
		want  []struct {
			contact string
			count   int
		}
	}{
		{
			name: "one member several weekdays",
			items: []model.MemberSchedule{
				sched(1, "FC Garuda", "Andi", 1, "MONDAY", 19, 21),
				sched(2, "FC Garuda", "Andi", 1, "THURSDAY", 19, 21),
			},
			want: []struct {
				contact string
				count   int
			}{{"Andi", 2}},
		},
		{
			// two members share a name on the same field; contact is
			// part of the grouping key so they stay separate groups
			name: "same member name different contacts",
			items: []model.MemberSchedule{
				sched(1, "FC Garuda", "Andi", 1, "MONDAY", 19, 21),
				sched(2, "FC Garuda", "Andi", 1, "THURSDAY", 19, 21),
				sched(3, "FC Garuda", "Siti", 1, "TUESDAY", 8, 10),
			},
			want: []struct {
				contact string
				count   int
			}{{"Andi", 2}, {"Siti", 1}},
		},
		{
			name: "same member across two fields",
			items: []model.MemberSchedule{
				sched(1, "FC Garuda", "Andi", 1, "MONDAY", 19, 21),
				sched(2, "FC Garuda", "Andi", 2, "MONDAY", 19, 21),
			},
			want: []struct {
				contact string
				count   int
			}{{"Andi", 1}, {"Andi", 1}},
		},
		{name: "empty", items: nil, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			groups := groupSchedules(tc.items)
			if len(groups) != len(tc.want) {
				t.Fatalf("groups = %d, want %d", len(groups), len(tc.want))
			}
			for i, w := range tc.want {
				if groups[i].ContactName != w.contact {
					t.Errorf("group %d contact = %s, want %s", i, groups[i].ContactName, w.contact)
				}
				if len(groups[i].Schedules) != w.count {
					t.Errorf("group %d schedules = %d, want %d", i, len(groups[i].Schedules), w.count)
				}
			}
		})
	}
}
