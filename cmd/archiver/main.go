package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/example/seller-panel/internal/events"
	"github.com/example/seller-panel/internal/infrastructure/kafka"
	"github.com/example/seller-panel/internal/infrastructure/store"
)

// The archiver copies order events from Kafka into the DynamoDB archive
// table, where the Kinesis integration picks them up for the lambda path.
func main() {
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	kafkaTopic := getEnv("KAFKA_TOPIC", "order-events")
	consumerGroup := "audit-archiver"
	tableName := getEnv("ARCHIVE_TABLE", "order-events-archive")

	log.Println("[Archiver] ========================================")
	log.Println("[Archiver] Seller Panel - Audit Archive Service")
	log.Println("[Archiver] ========================================")
	log.Printf("[Archiver] Kafka: %v", kafkaBrokers)
	log.Printf("[Archiver] Topic: %s", kafkaTopic)
	log.Printf("[Archiver] Table: %s", tableName)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("[Archiver] Failed to load AWS config: %v", err)
	}
	archive := store.NewDynamoAuditArchive(dynamodb.NewFromConfig(awsCfg), tableName)

	consumer := kafka.NewConsumer(kafkaBrokers, kafkaTopic, consumerGroup)
	defer consumer.Close()

	go func() {
		log.Println("[Archiver] Starting event consumer...")
		err := consumer.Consume(ctx, func(ctx context.Context, _ string, value []byte) error {
			var env events.Envelope
			if err := json.Unmarshal(value, &env); err != nil {
				log.Printf("[Archiver] Failed to unmarshal event: %v", err)
				return err
			}
			if err := archive.Archive(ctx, &env); err != nil {
				return err
			}
			log.Printf("[Archiver] Archived event %s (type: %s)", env.ID, env.Type)
			return nil
		})
		if err != nil {
			log.Printf("[Archiver] Consumer error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Archiver] Shutting down...")
	cancel()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
