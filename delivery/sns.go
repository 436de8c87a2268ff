// Package delivery provides SMS delivery callbacks backed by AWS SNS, plus
// adapters that fit an [SMSSender] into the engine's delivery hooks.
package delivery

import (
	"context"
	"fmt"

	betterauth "github.com/AlexeyZoz/better-auth"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SMSSender sends a text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type snsSender struct {
	client *sns.Client
}

// NewSNSSender builds an [SMSSender] on AWS SNS using the default credential
// chain. region may be empty to defer to the environment.
func NewSNSSender(ctx context.Context, region string) (SMSSender, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &snsSender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *snsSender) SendSMS(ctx context.Context, to, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &message,
	})
	return err
}

// VerificationOTP adapts a sender into the engine's verification delivery
// hook. template must contain one %s verb for the code.
func VerificationOTP(sender SMSSender, template string) betterauth.SendOTPFunc {
	if template == "" {
		template = "Your verification code is %s"
	}
	return func(ctx context.Context, phoneNumber, code string) (*betterauth.DeliveryVeto, error) {
		if err := sender.SendSMS(ctx, phoneNumber, fmt.Sprintf(template, code)); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

// PasswordResetOTP adapts a sender into the password reset delivery hook.
func PasswordResetOTP(sender SMSSender, template string) betterauth.SendResetOTPFunc {
	if template == "" {
		template = "Your password reset code is %s"
	}
	return func(ctx context.Context, phoneNumber, code string) error {
		return sender.SendSMS(ctx, phoneNumber, fmt.Sprintf(template, code))
	}
}
