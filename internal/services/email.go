package services

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/smtp"
	"strings"

	"smartair-backend/internal/models"
)

// EmailService notifies the office and the customer about new reservations.
// Without SMTP credentials it runs in dev mode and only logs.
type EmailService struct {
	host        string
	port        string
	user        string
	pass        string
	from        string
	notifyEmail string
	devMode     bool
	send        func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(host, port, user, pass, from, notifyEmail string) *EmailService {
	devMode := host == "" || user == ""
	if devMode {
		log.Println("⚠ Email service running in DEV MODE (logging to console)")
	}
	return &EmailService{
		host:        host,
		port:        port,
		user:        user,
		pass:        pass,
		from:        from,
		notifyEmail: notifyEmail,
		devMode:     devMode,
		send:        smtp.SendMail,
	}
}

// Publish sends mail for "created" events in the background.
func (s *EmailService) Publish(ctx context.Context, event models.ReservationEvent) {
	if event.Type != "created" || event.Reservation == nil {
		return
	}
	r := event.Reservation.Clone()

	go func() {
		if s.notifyEmail != "" {
			if err := s.SendOfficeNotification(s.notifyEmail, r); err != nil {
				log.Printf("📧 office notification for %s failed: %v", r.ID, err)
			}
		}
		if err := s.SendCustomerConfirmation(r); err != nil {
			log.Printf("📧 confirmation for %s failed: %v", r.ID, err)
		}
	}()
}

func (s *EmailService) SendOfficeNotification(to string, r *models.Reservation) error {
	subject := fmt.Sprintf("Nová rezervácia %s – %s", r.ID, r.ReservationType)

	var products string
	if len(r.SelectedProducts) > 0 {
		products = html.EscapeString(strings.Join(r.SelectedProducts, ", "))
	}
	var message string
	if r.Message != nil {
		message = html.EscapeString(*r.Message)
	}

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Inter, Arial, sans-serif; color: #1a1a2e;">
  <h2 style="margin: 0 0 16px;">Nová rezervácia %s</h2>
  <table style="border-collapse: collapse; font-size: 14px;">
    <tr><td style="padding: 4px 12px 4px 0;"><b>Meno</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;"><b>E-mail</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;"><b>Telefón</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;"><b>Adresa</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;"><b>Typ</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;"><b>Termín</b></td><td>%s %s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;"><b>Produkty</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;"><b>Správa</b></td><td>%s</td></tr>
  </table>
</body>
</html>`,
		html.EscapeString(r.ID), html.EscapeString(r.Name), html.EscapeString(r.Email),
		html.EscapeString(r.Phone), html.EscapeString(r.Address), html.EscapeString(string(r.ReservationType)),
		html.EscapeString(r.PreferredDate), html.EscapeString(r.PreferredTime), products, message)

	return s.sendHTML(to, subject, body)
}

func (s *EmailService) SendCustomerConfirmation(r *models.Reservation) error {
	subject := "SmartAir – prijali sme vašu rezerváciu"
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Inter, Arial, sans-serif; color: #1a1a2e;">
  <div style="max-width: 480px; margin: 40px auto;">
    <h2 style="margin: 0 0 16px;">Ďakujeme, %s!</h2>
    <p style="color: #555; line-height: 1.6;">
      Vašu žiadosť (%s) na termín %s, %s sme prijali. Ozveme sa vám čo najskôr
      s potvrdením termínu. V prípade otázok volajte +421 915 033 440.
    </p>
    <p style="color: #999; font-size: 12px;">Číslo rezervácie: %s</p>
  </div>
</body>
</html>`,
		html.EscapeString(r.Name), html.EscapeString(string(r.ReservationType)),
		html.EscapeString(r.PreferredDate), html.EscapeString(r.PreferredTime), html.EscapeString(r.ID))

	return s.sendHTML(r.Email, subject, body)
}

func (s *EmailService) sendHTML(to, subject, htmlBody string) error {
	if s.devMode {
		log.Printf("📧 [DEV EMAIL] To: %s | Subject: %s", to, subject)
		return nil
	}

	headers := []string{
		fmt.Sprintf("From: %s", s.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := s.send(addr, auth, s.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	log.Printf("📧 Email sent to %s: %s", to, subject)
	return nil
}
