// Package notifier sends order-confirmation email through AWS SES.
// Sending is best-effort: callers fire it from a goroutine and failures
// are logged, never surfaced to the customer.
package notifier

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Configured reports whether a sender address is set; without one the
// notifier stays silent.
func Configured() bool {
	return os.Getenv("AWS_SENDER_ADDRESS") != ""
}

// SendOrderConfirmation emails the customer that their order was
// placed.
func SendOrderConfirmation(recipientEmail, customerName, orderID string, totalAmount float64) error {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"), "")),
	)
	if err != nil {
		log.Printf("notifier: failed to load AWS config for order %s: %v", orderID, err)
		return fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := ses.NewFromConfig(awsCfg)

	sender := os.Getenv("AWS_SENDER_ADDRESS")
	if sender == "" {
		return fmt.Errorf("sender email address is not configured")
	}
	if recipientEmail == "" {
		return fmt.Errorf("recipient email address is empty")
	}

	subject := fmt.Sprintf("Order %s Confirmation - Thank You for Your Purchase!", orderID)
	amount := strconv.FormatFloat(totalAmount, 'f', 2, 64)

	bodyText := fmt.Sprintf(
		"Dear %s,\n\nThank you for your order! Order %s has been placed.\n\n"+
			"Order Details:\nOrder ID: %s\nTotal Amount: %s\n\n"+
			"We'll email you again when your order ships.\n\nBest regards,\nThe Arambam Team",
		customerName, orderID, orderID, amount)

	input := &ses.SendEmailInput{
		Source: aws.String(sender),
		Destination: &types.Destination{
			ToAddresses: []string{recipientEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyText),
				},
			},
		},
	}

	if _, err := client.SendEmail(context.TODO(), input); err != nil {
		log.Printf("notifier: failed to send confirmation for order %s to %s: %v", orderID, recipientEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("notifier: confirmation sent for order %s to %s", orderID, recipientEmail)
	return nil
}
