package worker_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"villabook/internal/models"
	"villabook/internal/services"
	"villabook/internal/worker"

	"github.com/shopspring/decimal"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(to, replyTo, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{To: to, ReplyTo: replyTo, Subject: subject, Body: htmlBody})
	return f.err
}

func testBooking() models.Booking {
	return models.Booking{
		ID:       "booking-ab12cd",
		CheckIn:  time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		Days:     3,
		Price:    decimal.NewFromInt(45000),
		FullName: "Jane Guest",
		Email:    "jane@example.com",
		Phone:    "+911234567890",
		Persons:  2,
		Status:   models.StatusPending,
	}
}

func delivery(t *testing.T, event string, booking models.Booking) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(services.BookingEvent{Event: event, Booking: booking})
	require.NoError(t, err)
	return amqp.Delivery{Body: body}
}

func TestMailWorker_BookingCreated(t *testing.T) {
	sender := &fakeSender{}
	w := worker.NewMailWorker(sender, "owner@example.com")

	err := w.HandleDelivery(delivery(t, services.EventBookingCreated, testBooking()))
	require.NoError(t, err)
	require.Len(t, sender.sent, 2)

	customer := sender.sent[0]
	assert.Equal(t, "jane@example.com", customer.To)
	assert.Equal(t, "owner@example.com", customer.ReplyTo)
	assert.Equal(t, "Booking Confirmed! Your Villa Stay #AB12CD", customer.Subject)
	assert.Contains(t, customer.Body, "02 Jun 2025")
	assert.Contains(t, customer.Body, "45000.00")

	owner := sender.sent[1]
	assert.Equal(t, "owner@example.com", owner.To)
	assert.Equal(t, "jane@example.com", owner.ReplyTo)
	assert.Equal(t, "NEW BOOKING #AB12CD", owner.Subject)
	assert.Contains(t, owner.Body, "+911234567890")
}

func TestMailWorker_BookingCancelled(t *testing.T) {
	sender := &fakeSender{}
	w := worker.NewMailWorker(sender, "owner@example.com")

	booking := testBooking()
	booking.Status = models.StatusCancelled
	err := w.HandleDelivery(delivery(t, services.EventBookingCancelled, booking))
	require.NoError(t, err)
	require.Len(t, sender.sent, 2)

	assert.Equal(t, "Booking #AB12CD Cancelled", sender.sent[0].Subject)
	assert.Equal(t, "CANCELLED BOOKING #AB12CD", sender.sent[1].Subject)
}

func TestMailWorker_SendFailureIsSwallowed(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp unreachable")}
	w := worker.NewMailWorker(sender, "owner@example.com")

	// The message must still be acked so it is not redelivered forever.
	err := w.HandleDelivery(delivery(t, services.EventBookingCreated, testBooking()))
	assert.NoError(t, err)
	assert.Len(t, sender.sent, 2)
}

func TestMailWorker_UnknownEventIgnored(t *testing.T) {
	sender := &fakeSender{}
	w := worker.NewMailWorker(sender, "owner@example.com")

	err := w.HandleDelivery(delivery(t, "booking.relocated", testBooking()))
	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestMailWorker_BadPayload(t *testing.T) {
	sender := &fakeSender{}
	w := worker.NewMailWorker(sender, "owner@example.com")

	err := w.HandleDelivery(amqp.Delivery{Body: []byte("not json")})
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}
