package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var (
	sesClient *ses.Client
	sesOnce   sync.Once
)

// Lazy init so deployments without SES credentials (and tests) never
// touch AWS. Email delivery is best-effort.
func sesReady() bool {
	if os.Getenv("SES_EMAIL") == "" {
		return false
	}
	sesOnce.Do(func() {
		cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(os.Getenv("AWS_REGION")))
		if err != nil {
			log.Printf("AWS config load failed, email alerts disabled: %v", err)
			return
		}
		sesClient = ses.NewFromConfig(cfg)
	})
	return sesClient != nil
}

// generic SES sender
func sendEmail(to string, subject string, body string) error {
	if !sesReady() {
		return nil
	}
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
		Source: aws.String(os.Getenv("SES_EMAIL")),
	}

	_, err := sesClient.SendEmail(context.TODO(), input)
	if err != nil {
		log.Printf("SES send error: %v", err)
		return fmt.Errorf("email send failed: %v", err)
	}
	return nil
}

// SendHighRiskEmail notifies a user that their latest assessment came
// back in the high band.
func SendHighRiskEmail(to string, assessmentType string, score int) error {
	subject := "Health Risk Alert"
	body := fmt.Sprintf(
		"Your latest %s assessment scored %d/100, which is in the high risk band.\n\n"+
			"Please review the generated recommendations in the app and consider consulting your physician.",
		assessmentType, score)
	return sendEmail(to, subject, body)
}
