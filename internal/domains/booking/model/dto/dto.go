package dto

import (
	"time"

	"busline/internal/domains/booking/model"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	gModel "busline/shared/model"
	"busline/shared/timezone"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	PassengerID   string `json:"passengerId"   validate:"required,uuid"`
	ScheduleID    string `json:"scheduleId"    validate:"required,uuid"`
	NumberOfSeats int    `json:"numberOfSeats" validate:"required,gte=1"`
	SeatNumbers   string `json:"seatNumbers"   validate:"omitempty,max=255"`
}

// ToModel builds a confirmed, unpaid booking priced at fare per seat.
func (c *CreateBookingRequest) ToModel(user string, fare float64) model.Booking {
	now := timezone.Now()

	return model.Booking{
		ID:            uuid.NewString(),
		BookingNumber: model.GenerateBookingNumber(now),
		PassengerID:   c.PassengerID,
		ScheduleID:    c.ScheduleID,
		NumberOfSeats: c.NumberOfSeats,
		SeatNumbers:   c.SeatNumbers,
		TotalAmount:   model.TotalAmount(fare, c.NumberOfSeats),
		PaymentStatus: model.PaymentPending,
		BookingStatus: model.StatusConfirmed,
		BookingDate:   now,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateBookingRequest struct {
	NumberOfSeats *int                `json:"numberOfSeats" validate:"omitempty,gte=1"`
	SeatNumbers   *string             `json:"seatNumbers"   validate:"omitempty,max=255"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus" validate:"omitempty,enum"`
	BookingStatus model.Status        `json:"bookingStatus" validate:"omitempty,enum"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus model.PaymentStatus `db:"payment_status" json:"paymentStatus" validate:"required,enum"`
}

type DateRangeQuery struct {
	Start time.Time
	End   time.Time
}

type BookingResponse struct {
	ID            string              `json:"id"`
	BookingNumber string              `json:"bookingNumber"`
	PassengerID   string              `json:"passengerId"`
	ScheduleID    string              `json:"scheduleId"`
	NumberOfSeats int                 `json:"numberOfSeats"`
	SeatNumbers   string              `json:"seatNumbers,omitempty"`
	TotalAmount   float64             `json:"totalAmount"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	BookingStatus model.Status        `json:"bookingStatus"`
	BookingDate   string              `json:"bookingDate"`
	gDto.Metadata
}

func (b *BookingResponse) FromModel(model model.Booking) {
	b.ID = model.ID
	b.BookingNumber = model.BookingNumber
	b.PassengerID = model.PassengerID
	b.ScheduleID = model.ScheduleID
	b.NumberOfSeats = model.NumberOfSeats
	b.SeatNumbers = model.SeatNumbers
	b.TotalAmount = model.TotalAmount
	b.PaymentStatus = model.PaymentStatus
	b.BookingStatus = model.BookingStatus
	b.BookingDate = timezone.Format(model.BookingDate, constant.DateFormat)
	b.Metadata.FromModel(model.Metadata)
}

func FromModels(models []model.Booking) []BookingResponse {
	res := make([]BookingResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}

type ConfirmedCountResponse struct {
	ScheduleID string `json:"scheduleId"`
	Count      int    `json:"count"`
}
