package model

import "time"

// Field represents a bookable sports field (futsal court, badminton
// court, etc.) managed by venue admins.  A field can be rented per
// one-hour slot between 08:00 and 22:00.  This struct corresponds to
// a row in the `fields` table.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name of the field.
//  PricePerHour – rental price per one-hour slot, in whole rupiah.
//  IsActive     – whether the field accepts new bookings.  Deactivating
//                 a field never invalidates reservations that already
//                 exist on it.
//  CreatedAt    – timestamp when the field was created.
//  UpdatedAt    – timestamp of last update.
type Field struct {
	ID           uint64    // fields.id
	Name         string    // fields.name
	PricePerHour int64     // fields.price_per_hour (rupiah)
	IsActive     bool      // fields.is_active
	CreatedAt    time.Time // fields.created_at
	UpdatedAt    time.Time // fields.updated_at
}
