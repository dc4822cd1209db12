package notification

import (
	"context"
	"fmt"

	"medibook/config"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSService sends passcodes over Twilio SMS.
type SMSService struct {
	client *twilio.RestClient
	from   string
}

func NewSMSService() *SMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: config.AppConfig.TwilioAccountSID,
		Password: config.AppConfig.TwilioAuthToken,
	})
	return &SMSService{
		client: client,
		from:   config.AppConfig.TwilioFromNumber,
	}
}

func (s *SMSService) SendOTP(ctx context.Context, contact, code string) error {
	ttlMinutes := config.AppConfig.OTPTTLSeconds / 60
	message := fmt.Sprintf("Your medibook verification code is %s. It expires in %d minutes.", code, ttlMinutes)

	params := &openapi.CreateMessageParams{}
	params.SetTo(contact)
	params.SetFrom(s.from)
	params.SetBody(message)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}
