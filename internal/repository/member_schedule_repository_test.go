package repository

import (
	"context"
	"database/sql/driver"
	"strings"
	"testing"
	"time"
)

// The admin listing folds rows into (member_name, contact_name,
// field_id) groups by adjacency, so contact_name must be an ordering
// key: two members who share a name may not interleave.
func TestListAllOrdersByGroupingKey(t *testing.T) {
	d := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "member_name", "contact_name", "field_id", "day_of_week",
		"start_hour", "end_hour", "package_type", "start_date", "end_date",
		"is_active", "created_at", "updated_at"}
	row := func(id int64, contact, day string) []driver.Value {
		return []driver.Value{id, "FC Garuda", contact, int64(1), day,
			int64(19), int64(21), "3-bulan", d, d.AddDate(0, 3, 0), true, d, d}
	}
	conn := &stubConn{queries: []*stubRows{{cols: cols, rows: [][]driver.Value{
		row(1, "Andi", "MONDAY"),
		row(2, "Andi", "THURSDAY"),
		row(3, "Siti", "TUESDAY"),
	}}}}
	db := openStubDB(t, conn)
	repo := NewMemberScheduleRepo(db)

	items, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	if items[0].ContactName != "Andi" || items[1].ContactName != "Andi" || items[2].ContactName != "Siti" {
		t.Fatalf("rows out of contact order: %+v", items)
	}
	if len(conn.queryLog) != 1 ||
		!strings.Contains(conn.queryLog[0], "ORDER BY member_name, contact_name, field_id") {
		t.Fatalf("ListAll does not order by the grouping key:\n%s", conn.queryLog[0])
	}
}
