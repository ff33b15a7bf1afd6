package notifier

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	commonaws "grant-intake/internal/common/aws"
	"grant-intake/internal/models"
)

// Email sends notifications to operator mailboxes through SES.
type Email struct {
	ses  commonaws.SESService
	from string
	to   []string
}

func NewEmail(client commonaws.SESService, from string, to []string) *Email {
	return &Email{ses: client, from: from, to: to}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Enabled() bool {
	return e.ses != nil && e.from != "" && len(e.to) > 0
}

func (e *Email) Send(ctx context.Context, n models.Notification) error {
	if !e.Enabled() {
		return nil
	}

	_, err := e.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(e.from),
		Destination: &types.Destination{ToAddresses: e.to},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(n.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(PlainText(n.Body)), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}
	return nil
}
