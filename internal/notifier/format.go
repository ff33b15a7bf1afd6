package notifier

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"grant-intake/internal/models"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// Legacy Markdown has no escape for the backslash itself, so it passes through.
var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// escape makes user input safe inside Telegram legacy Markdown.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// ApplicationMessage renders the announcement for a new application.
func ApplicationMessage(app *models.Application) models.Notification {
	location := app.State
	if app.City != "" {
		location = app.City + ", " + app.State
	}

	var b strings.Builder
	b.WriteString("🆕 *New Grant Application Received*\n\n")
	fmt.Fprintf(&b, "👤 *Applicant:* %s\n", escape(app.FullName()))
	fmt.Fprintf(&b, "📧 *Email:* %s\n", escape(app.Email))
	fmt.Fprintf(&b, "📱 *Phone:* %s\n", escape(app.Phone))
	fmt.Fprintf(&b, "🏠 *Location:* %s\n", escape(location))
	fmt.Fprintf(&b, "💰 *Monthly Income:* $%s\n", strconv.FormatFloat(app.MonthlyIncome, 'f', -1, 64))
	fmt.Fprintf(&b, "🎯 *Funding Type:* %s\n", escape(orDefault(app.FundingType, "Not specified")))
	fmt.Fprintf(&b, "💵 *Grant Amount:* %s\n", escape(app.GrantAmount))
	fmt.Fprintf(&b, "📝 *Purpose:* %s\n", escape(app.PurposeDescription))
	fmt.Fprintf(&b, "👥 *Referred By:* %s\n", escape(app.ReferredBy))
	fmt.Fprintf(&b, "📅 *Submitted:* %s\n\n", app.CreatedAt.UTC().Format(timeLayout))
	fmt.Fprintf(&b, "🆔 *Application ID:* %s", escape(app.ID))

	return models.Notification{
		Kind:     models.KindApplication,
		RecordID: app.ID,
		Subject:  fmt.Sprintf("New grant application from %s", app.FullName()),
		Body:     b.String(),
		Created:  app.CreatedAt,
	}
}

// ContactMessage renders the announcement for a new contact inquiry.
func ContactMessage(c *models.Contact) models.Notification {
	var b strings.Builder
	b.WriteString("📨 *New Contact Form Submission*\n\n")
	fmt.Fprintf(&b, "👤 *Name:* %s\n", escape(c.Name))
	fmt.Fprintf(&b, "📧 *Email:* %s\n", escape(c.Email))
	fmt.Fprintf(&b, "📱 *Phone:* %s\n", escape(orDefault(c.Phone, "Not provided")))
	fmt.Fprintf(&b, "📋 *Subject:* %s\n", escape(orDefault(c.Subject, "No subject")))
	fmt.Fprintf(&b, "💬 *Message:* %s\n", escape(c.Message))
	fmt.Fprintf(&b, "📅 *Submitted:* %s\n\n", c.CreatedAt.UTC().Format(timeLayout))
	fmt.Fprintf(&b, "🆔 *Contact ID:* %s", escape(c.ID))

	return models.Notification{
		Kind:     models.KindContact,
		RecordID: c.ID,
		Subject:  fmt.Sprintf("New contact inquiry from %s", c.Name),
		Body:     b.String(),
		Created:  c.CreatedAt,
	}
}

// TestMessage is sent by the notification self-test.
func TestMessage(now time.Time) models.Notification {
	return models.Notification{
		Subject: "Notification test",
		Body:    "🤖 Notifications are working! Ready to receive submissions.",
		Created: now,
	}
}

// PlainText strips Markdown emphasis and escapes for channels without
// formatting support. A backslash is only dropped before an escapable rune.
func PlainText(markdown string) string {
	runes := []rune(markdown)
	var b strings.Builder
	b.Grow(len(markdown))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes) && isMarkdownSpecial(runes[i+1]):
			i++
			b.WriteRune(runes[i])
		case r == '*':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isMarkdownSpecial(r rune) bool {
	switch r {
	case '_', '*', '`', '[':
		return true
	}
	return false
}
