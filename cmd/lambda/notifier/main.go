package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/example/seller-panel/internal/email"
	"github.com/example/seller-panel/internal/infrastructure/kinesis"
	"github.com/example/seller-panel/internal/notification"
)

var notificationHandler *notification.Handler

func init() {
	smtpHost := getEnv("SMTP_HOST", "localhost")
	smtpPort := getEnv("SMTP_PORT", "1025")
	smtpFrom := getEnv("SMTP_FROM", "noreply@example.com")
	inbox := getEnv("ALERT_INBOX", "orders@example.com")

	emailSvc := email.NewService(smtpHost, smtpPort, smtpFrom)
	notificationHandler = notification.NewHandler(emailSvc, inbox)

	log.Printf("[Lambda Notifier] Initialized successfully (SMTP: %s:%s)", smtpHost, smtpPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func handler(ctx context.Context, kinesisEvent lambdaevents.KinesisEvent) (lambdaevents.KinesisEventResponse, error) {
	log.Printf("[Lambda Notifier] Received %d records", len(kinesisEvent.Records))

	var batchItemFailures []lambdaevents.KinesisBatchItemFailure

	for _, record := range kinesisEvent.Records {
		env, err := kinesis.ConvertFromKinesisRecord(record)
		if err != nil {
			log.Printf("[Lambda Notifier] Failed to convert record %s: %v", record.EventID, err)
			batchItemFailures = append(batchItemFailures, lambdaevents.KinesisBatchItemFailure{
				ItemIdentifier: record.Kinesis.SequenceNumber,
			})
			continue
		}

		// Skip non-INSERT events
		if env == nil {
			continue
		}

		log.Printf("[Lambda Notifier] Processing event: %s (type: %s)", env.ID, env.Type)

		envJSON, err := json.Marshal(env)
		if err != nil {
			log.Printf("[Lambda Notifier] Failed to marshal event %s: %v", env.ID, err)
			batchItemFailures = append(batchItemFailures, lambdaevents.KinesisBatchItemFailure{
				ItemIdentifier: record.Kinesis.SequenceNumber,
			})
			continue
		}

		if err := notificationHandler.HandleEvent(ctx, env.OrderID, envJSON); err != nil {
			log.Printf("[Lambda Notifier] Failed to process event %s: %v", env.ID, err)
			batchItemFailures = append(batchItemFailures, lambdaevents.KinesisBatchItemFailure{
				ItemIdentifier: record.Kinesis.SequenceNumber,
			})
			continue
		}
	}

	successCount := len(kinesisEvent.Records) - len(batchItemFailures)
	log.Printf("[Lambda Notifier] Processed %d/%d records successfully", successCount, len(kinesisEvent.Records))

	return lambdaevents.KinesisEventResponse{
		BatchItemFailures: batchItemFailures,
	}, nil
}

func main() {
	lambda.Start(handler)
}
