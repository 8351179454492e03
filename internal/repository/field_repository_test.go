package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"
)

func fieldRow(id int64, name string, price int64, active bool) []driver.Value {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return []driver.Value{id, name, price, active, now, now}
}

var fieldCols = []string{"id", "name", "price_per_hour", "is_active", "created_at", "updated_at"}

func TestFieldRepoCreate(t *testing.T) {
	conn := &stubConn{
		execs: []stubResult{{lastInsertID: 7, rowsAffected: 1}},
		queries: []*stubRows{
			{cols: fieldCols, rows: [][]driver.Value{fieldRow(7, "Lapangan A", 150000, true)}},
		},
	}
	db := openStubDB(t, conn)
	repo := NewFieldRepo(db)

	f, err := repo.Create(context.Background(), "Lapangan A", 150000)
	if err != nil {
		t.Fatalf("Create = %v", err)
	}
	if f.ID != 7 || f.Name != "Lapangan A" || f.PricePerHour != 150000 || !f.IsActive {
		t.Fatalf("Create returned %+v", f)
	}
}

func TestFieldRepoUpdate(t *testing.T) {
	conn := &stubConn{
		execs: []stubResult{{rowsAffected: 1}},
		queries: []*stubRows{
			{cols: fieldCols, rows: [][]driver.Value{fieldRow(7, "Lapangan A (indoor)", 175000, false)}},
		},
	}
	db := openStubDB(t, conn)
	repo := NewFieldRepo(db)

	f, err := repo.Update(context.Background(), 7, "Lapangan A (indoor)", 175000, false)
	if err != nil {
		t.Fatalf("Update = %v", err)
	}
	if f.Name != "Lapangan A (indoor)" || f.PricePerHour != 175000 || f.IsActive {
		t.Fatalf("Update returned %+v", f)
	}
}

func TestFieldRepoUpdateUnknownID(t *testing.T) {
	conn := &stubConn{
		execs:   []stubResult{{rowsAffected: 0}},
		queries: []*stubRows{{cols: fieldCols}}, // no rows
	}
	db := openStubDB(t, conn)
	repo := NewFieldRepo(db)

	_, err := repo.Update(context.Background(), 99, "Nope", 100000, true)
	if !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("Update unknown id = %v, want ErrFieldNotFound", err)
	}
}
