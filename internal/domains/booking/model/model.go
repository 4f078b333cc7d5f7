package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"busline/shared/model"

	"github.com/google/uuid"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID            = "id"
	FieldBookingNumber = "booking_number"
	FieldPassengerID   = "passenger_id"
	FieldScheduleID    = "schedule_id"
	FieldNumberOfSeats = "number_of_seats"
	FieldSeatNumbers   = "seat_numbers"
	FieldTotalAmount   = "total_amount"
	FieldPaymentStatus = "payment_status"
	FieldBookingStatus = "booking_status"
	FieldBookingDate   = "booking_date"

	bookingNumberPrefix = "BMS"
	bookingNumberSuffix = 6
)

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}

type Booking struct {
	ID            string        `db:"id"`
	BookingNumber string        `db:"booking_number"`
	PassengerID   string        `db:"passenger_id"`
	ScheduleID    string        `db:"schedule_id"`
	NumberOfSeats int           `db:"number_of_seats"`
	SeatNumbers   string        `db:"seat_numbers"`
	TotalAmount   float64       `db:"total_amount"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	BookingStatus Status        `db:"booking_status"`
	BookingDate   time.Time     `db:"booking_date"`
	model.Metadata
}

func (b Booking) IsConfirmed() bool {
	return b.BookingStatus == StatusConfirmed
}

// GenerateBookingNumber returns "BMS" followed by the epoch millis and a random suffix,
// so two bookings in the same millisecond still differ.
func GenerateBookingNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:bookingNumberSuffix]

	return fmt.Sprintf("%s%d%s", bookingNumberPrefix, now.UnixMilli(), suffix)
}

// TotalAmount is fare times seats. The rounding to cents only mirrors the NUMERIC(12,2)
// total_amount column; fares are stored with two decimals, so the product is already exact
// to the cent and rounding strips float noise without changing the value.
func TotalAmount(fare float64, seats int) float64 {
	return math.Round(fare*float64(seats)*100) / 100
}
