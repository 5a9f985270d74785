package worker

import (
	"encoding/json"
	"fmt"
	"log"

	"villabook/internal/models"
	"villabook/internal/services"
	"villabook/pkg/mailer"

	amqp "github.com/streadway/amqp"
)

// Sender delivers one rendered email. *mailer.Mailer satisfies it.
type Sender interface {
	Send(to, replyTo, subject, htmlBody string) error
}

// MailWorker consumes booking events and sends the corresponding customer
// and owner emails. Send failures are logged and the message is still
// acknowledged: notifications are best-effort with no retry.
type MailWorker struct {
	sender     Sender
	ownerEmail string
}

// NewMailWorker creates a new MailWorker.
func NewMailWorker(sender Sender, ownerEmail string) *MailWorker {
	return &MailWorker{
		sender:     sender,
		ownerEmail: ownerEmail,
	}
}

// HandleDelivery processes one queued booking event. It returns an error
// only for undecodable payloads; email failures are swallowed here.
func (w *MailWorker) HandleDelivery(msg amqp.Delivery) error {
	var event services.BookingEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("failed to decode booking event: %w", err)
	}

	switch event.Event {
	case services.EventBookingCreated:
		w.sendCreated(event.Booking)
	case services.EventBookingCancelled:
		w.sendCancelled(event.Booking)
	default:
		log.Printf("Ignoring unknown booking event %q", event.Event)
	}
	return nil
}

func (w *MailWorker) sendCreated(b models.Booking) {
	data := mailData(b)

	if body, err := mailer.CustomerConfirmationBody(data); err != nil {
		log.Printf("Failed to render customer confirmation for %s: %v", data.Reference, err)
	} else {
		subject := fmt.Sprintf("Booking Confirmed! Your Villa Stay #%s", data.Reference)
		if err := w.sender.Send(b.Email, w.ownerEmail, subject, body); err != nil {
			log.Printf("Failed to send customer confirmation for %s: %v", data.Reference, err)
		} else {
			log.Printf("Customer confirmation sent for booking %s", data.Reference)
		}
	}

	if body, err := mailer.OwnerNotificationBody(data); err != nil {
		log.Printf("Failed to render owner notification for %s: %v", data.Reference, err)
	} else {
		subject := fmt.Sprintf("NEW BOOKING #%s", data.Reference)
		if err := w.sender.Send(w.ownerEmail, b.Email, subject, body); err != nil {
			log.Printf("Failed to send owner notification for %s: %v", data.Reference, err)
		} else {
			log.Printf("Owner notification sent for booking %s", data.Reference)
		}
	}
}

func (w *MailWorker) sendCancelled(b models.Booking) {
	data := mailData(b)

	if body, err := mailer.CustomerCancellationBody(data); err != nil {
		log.Printf("Failed to render customer cancellation for %s: %v", data.Reference, err)
	} else {
		subject := fmt.Sprintf("Booking #%s Cancelled", data.Reference)
		if err := w.sender.Send(b.Email, w.ownerEmail, subject, body); err != nil {
			log.Printf("Failed to send customer cancellation for %s: %v", data.Reference, err)
		}
	}

	if body, err := mailer.OwnerCancellationBody(data); err != nil {
		log.Printf("Failed to render owner cancellation for %s: %v", data.Reference, err)
	} else {
		subject := fmt.Sprintf("CANCELLED BOOKING #%s", data.Reference)
		if err := w.sender.Send(w.ownerEmail, b.Email, subject, body); err != nil {
			log.Printf("Failed to send owner cancellation for %s: %v", data.Reference, err)
		}
	}
}

func mailData(b models.Booking) mailer.BookingMail {
	return mailer.BookingMail{
		Reference: b.Reference(),
		FullName:  b.FullName,
		Email:     b.Email,
		Phone:     b.Phone,
		CheckIn:   b.CheckIn.Format("02 Jan 2006"),
		CheckOut:  b.CheckOut.Format("02 Jan 2006"),
		Days:      b.Days,
		Persons:   b.Persons,
		Price:     b.Price.StringFixed(2),
		Status:    b.Status,
	}
}
