// internal/core/whatsapp/twilio.go
package whatsapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/shared/utils"
)

// messageCreator is the slice of the Twilio REST API used for sending
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends WhatsApp messages through the Twilio Messaging API
type TwilioSender struct {
	api messageCreator
}

// NewTwilioSender creates a sender from account credentials
func NewTwilioSender(accountSID, authToken string) (*TwilioSender, error) {
	if accountSID == "" || authToken == "" {
		return nil, fmt.Errorf("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required")
	}
	c := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{api: c.Api}, nil
}

func (s *TwilioSender) Transport() Transport { return TransportTwilio }

// Send posts the message. Numbers are given in E.164 and prefixed with the
// whatsapp: channel here.
func (s *TwilioSender) Send(ctx context.Context, msg OutboundMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &SendError{Transport: TransportTwilio, Err: err}
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(TwilioAddress(msg.From))
	params.SetTo(TwilioAddress(msg.To))
	params.SetBody(msg.Body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		var restErr *client.TwilioRestError
		if errors.As(err, &restErr) {
			return "", &SendError{Transport: TransportTwilio, StatusCode: restErr.Status, Err: fmt.Errorf("%d: %s", restErr.Code, restErr.Message)}
		}
		return "", &SendError{Transport: TransportTwilio, Err: err}
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}

	log.Info().Str("to", utils.MaskPhone(msg.To)).Str("sid", sid).Msg("✅ Twilio message sent")
	return sid, nil
}

// TwilioAddress returns the whatsapp:+E.164 form of a phone number
func TwilioAddress(phone string) string {
	return "whatsapp:" + NormalizePhone(phone)
}

// TwilioValidator checks the X-Twilio-Signature header
type TwilioValidator struct {
	validator client.RequestValidator
}

// NewTwilioValidator creates a validator for the account auth token
func NewTwilioValidator(authToken string) *TwilioValidator {
	return &TwilioValidator{validator: client.NewRequestValidator(authToken)}
}

// Validate reports whether signature matches url and the posted form params
func (v *TwilioValidator) Validate(url string, params map[string]string, signature string) bool {
	if signature == "" {
		return false
	}
	return v.validator.Validate(url, params, signature)
}
