package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// BookingMail carries the fields the email templates render.
type BookingMail struct {
	Reference string
	FullName  string
	Email     string
	Phone     string
	CheckIn   string
	CheckOut  string
	Days      int
	Persons   int
	Price     string
	Status    string
}

var customerConfirmationTmpl = template.Must(template.New("customerConfirmation").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2>Thank you, {{.FullName}}!</h2>
  <p>Your villa stay is booked and pending confirmation.</p>
  <table cellpadding="6">
    <tr><td><b>Booking reference</b></td><td>#{{.Reference}}</td></tr>
    <tr><td><b>Check-in</b></td><td>{{.CheckIn}}</td></tr>
    <tr><td><b>Check-out</b></td><td>{{.CheckOut}}</td></tr>
    <tr><td><b>Nights</b></td><td>{{.Days}}</td></tr>
    <tr><td><b>Guests</b></td><td>{{.Persons}}</td></tr>
    <tr><td><b>Total price</b></td><td>&#8377; {{.Price}}</td></tr>
  </table>
  <p>We will confirm your booking once payment is verified.</p>
</div>`))

var ownerNotificationTmpl = template.Must(template.New("ownerNotification").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2>New booking #{{.Reference}}</h2>
  <table cellpadding="6">
    <tr><td><b>Guest</b></td><td>{{.FullName}}</td></tr>
    <tr><td><b>Email</b></td><td>{{.Email}}</td></tr>
    <tr><td><b>Phone</b></td><td>{{.Phone}}</td></tr>
    <tr><td><b>Check-in</b></td><td>{{.CheckIn}}</td></tr>
    <tr><td><b>Check-out</b></td><td>{{.CheckOut}}</td></tr>
    <tr><td><b>Guests</b></td><td>{{.Persons}}</td></tr>
    <tr><td><b>Total price</b></td><td>&#8377; {{.Price}}</td></tr>
  </table>
</div>`))

var customerCancellationTmpl = template.Must(template.New("customerCancellation").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2>Booking #{{.Reference}} cancelled</h2>
  <p>Hi {{.FullName}}, your booking from {{.CheckIn}} to {{.CheckOut}} has been cancelled.</p>
  <p>If this was a mistake, please book again or contact us.</p>
</div>`))

var ownerCancellationTmpl = template.Must(template.New("ownerCancellation").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2>Booking #{{.Reference}} was cancelled by the guest</h2>
  <p>{{.FullName}} ({{.Email}}) cancelled their stay from {{.CheckIn}} to {{.CheckOut}}.</p>
</div>`))

// CustomerConfirmationBody renders the guest-facing confirmation email.
func CustomerConfirmationBody(b BookingMail) (string, error) {
	return render(customerConfirmationTmpl, b)
}

// OwnerNotificationBody renders the owner alert for a new booking.
func OwnerNotificationBody(b BookingMail) (string, error) {
	return render(ownerNotificationTmpl, b)
}

// CustomerCancellationBody renders the guest-facing cancellation email.
func CustomerCancellationBody(b BookingMail) (string, error) {
	return render(customerCancellationTmpl, b)
}

// OwnerCancellationBody renders the owner alert for a cancellation.
func OwnerCancellationBody(b BookingMail) (string, error) {
	return render(ownerCancellationTmpl, b)
}

func render(t *template.Template, b BookingMail) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, b); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}
