package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	commonaws "grant-intake/internal/common/aws"
	"grant-intake/internal/models"
)

// SMS publishes a one-line alert to operator phones through SNS. The full
// record stays on the richer channels.
type SMS struct {
	sns    commonaws.SNSService
	phones []string
}

func NewSMS(client commonaws.SNSService, phones []string) *SMS {
	return &SMS{sns: client, phones: phones}
}

func (s *SMS) Name() string { return "sms" }

func (s *SMS) Enabled() bool {
	return s.sns != nil && len(s.phones) > 0
}

func (s *SMS) Send(ctx context.Context, n models.Notification) error {
	if !s.Enabled() {
		return nil
	}

	text := n.Subject
	if n.RecordID != "" {
		text = fmt.Sprintf("%s (id %s)", n.Subject, n.RecordID)
	}

	var errs []error
	for _, phone := range s.phones {
		_, err := s.sns.Publish(ctx, &sns.PublishInput{
			PhoneNumber: aws.String(phone),
			Message:     aws.String(text),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("sns publish to %s: %w", phone, err))
		}
	}
	return errors.Join(errs...)
}
