package services

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/fairwayfoods/fairway-app/models"
	"github.com/fairwayfoods/fairway-app/utils"
)

// Mailer sends transactional email over SMTP. When SMTP is not configured it
// degrades to a log line and reports the message as not sent, so every flow
// that mails stays usable in development.
type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func NewMailer() *Mailer {
	return &Mailer{
		Host:     envOr("SMTP_HOST", "smtp.gmail.com"),
		Port:     envOr("SMTP_PORT", "587"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("FROM_EMAIL"),
		FromName: envOr("FROM_NAME", "Fairway Foods"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (m *Mailer) Configured() bool {
	return m.Username != "" && m.Password != ""
}

// Send delivers one HTML email. Returns false without error when SMTP is not
// configured.
func (m *Mailer) Send(to, subject, htmlBody string) bool {
	if !m.Configured() {
		utils.InfoLogger.Printf("mailer not configured, would have sent to %s: %s", to, subject)
		return false
	}

	from := m.From
	if from == "" {
		from = m.Username
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", m.FromName, from),
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		htmlBody,
	}, "\r\n")

	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	addr := m.Host + ":" + m.Port

	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		utils.ErrorLogger.Printf("failed to send email to %s: %v", to, err)
		return false
	}

	utils.InfoLogger.Printf("email sent to %s: %s", to, subject)
	return true
}

// SendToMany delivers the same email to each recipient and reports how many
// went out.
func (m *Mailer) SendToMany(to []string, subject, htmlBody string) (sent int) {
	for _, addr := range to {
		if m.Send(addr, subject, htmlBody) {
			sent++
		}
	}
	return sent
}

func (m *Mailer) SendRegistrationNotification(superuserEmails []string, userName, userEmail string) {
	subject := "New User Registration - Approval Required"
	body := fmt.Sprintf(`<p>A new user has registered and is waiting for approval.</p>
<p><strong>Name:</strong> %s<br><strong>Email:</strong> %s</p>
<p>Log in to the admin dashboard to approve or reject this registration.</p>`, userName, userEmail)
	m.SendToMany(superuserEmails, subject, body)
}

func (m *Mailer) SendWelcome(userEmail, userName string) {
	subject := "Welcome to Fairway Foods"
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Thanks for registering. Your account is pending approval by the administrator;
we will let you know as soon as it has been reviewed.</p>`, userName)
	m.Send(userEmail, subject, body)
}

func (m *Mailer) SendApproval(userEmail, userName string) {
	subject := "Your Fairway Foods account has been approved"
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your account has been approved. You can now log in and place orders.</p>`, userName)
	m.Send(userEmail, subject, body)
}

func (m *Mailer) SendRejection(userEmail, userName, reason string) {
	subject := "Your Fairway Foods registration"
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Unfortunately your registration was not approved.</p>
<p><strong>Reason:</strong> %s</p>`, userName, reason)
	m.Send(userEmail, subject, body)
}

func (m *Mailer) SendPasswordReset(userEmail, userName, code string) bool {
	subject := "Your password reset code"
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your password reset code is:</p>
<h2>%s</h2>
<p>The code expires in 15 minutes. If you did not request a reset, you can
ignore this email.</p>`, userName, code)
	return m.Send(userEmail, subject, body)
}

func (m *Mailer) SendPasswordChanged(userEmail, userName string) {
	subject := "Your password was changed"
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your Fairway Foods password was just changed. If this was not you, contact
your club administrator immediately.</p>`, userName)
	m.Send(userEmail, subject, body)
}

func (m *Mailer) SendOrderConfirmation(userEmail, userName string, order models.Order, courseName string) {
	var lines strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&lines, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			item.Name, item.Quantity, utils.FormatRand(item.Price*float64(item.Quantity)))
	}

	subject := fmt.Sprintf("Order %s confirmed", order.Reference)
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your order at %s has been received.</p>
<table border="0" cellpadding="4">
<tr><th>Item</th><th>Qty</th><th>Amount</th></tr>
%s
</table>
<p><strong>Total:</strong> %s<br><strong>Tee-off time:</strong> %s</p>`,
		userName, courseName, lines.String(), utils.FormatRand(order.TotalAmount), order.TeeOffTime)
	m.Send(userEmail, subject, body)
}
