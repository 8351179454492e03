// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/google/uuid"

    "github.com/danuarta/field-booking/internal/model"
)

// Event types carried on the reservation.events queue.
const (
    EventReservationCreated  = "reservation.created"
    EventPaymentVerified     = "payment.verified"
    EventPaymentRejected     = "payment.rejected"
    EventReservationRefunded = "reservation.refunded"
)

// ReservationEvent is published on every reservation lifecycle change.
// It carries a snapshot of the reservation so downstream consumers can
// log, notify, or trigger analytics without querying the primary
// database. EventID is unique per publish so consumers can deduplicate
// redelivered messages.
type ReservationEvent struct {
    EventID           string `json:"event_id"`
    Type              string `json:"type"`
    ReservationID     uint64 `json:"reservation_id"`
    UserID            uint64 `json:"user_id"`
    FieldID           uint64 `json:"field_id"`
    PlayDate          string `json:"play_date"`
    StartHour         int    `json:"start_hour"`
    EndHour           int    `json:"end_hour"`
    PaymentType       string `json:"payment_type"`
    TotalPrice        int64  `json:"total_price"`
    PaymentAmount     int64  `json:"payment_amount"`
    ReservationStatus string `json:"reservation_status"`
    PaymentStatus     string `json:"payment_status"`
    OccurredAt        string `json:"occurred_at"`
}

// NewReservationEvent snapshots res into an event of the given type.
func NewReservationEvent(eventType string, res *model.Reservation) ReservationEvent {
    return ReservationEvent{
        EventID:           uuid.NewString(),
        Type:              eventType,
        ReservationID:     res.ID,
        UserID:            res.UserID,
        FieldID:           res.FieldID,
        PlayDate:          res.PlayDate.Format("2006-01-02"),
        StartHour:         res.StartHour,
        EndHour:           res.EndHour,
        PaymentType:       string(res.PaymentType),
        TotalPrice:        res.TotalPrice,
        PaymentAmount:     res.PaymentAmount,
        ReservationStatus: string(res.ReservationStatus),
        PaymentStatus:     res.PaymentStatus.Label(),
        OccurredAt:        time.Now().UTC().Format(time.RFC3339),
    }
}
