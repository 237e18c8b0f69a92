package kinesis

import (
	"encoding/json"
	"fmt"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"

	"github.com/example/seller-panel/internal/events"
)

// ConvertFromKinesisRecord converts a Kinesis record (DynamoDB Streams format)
// into an order event envelope. The DynamoDB Kinesis integration forwards
// archive table writes in DynamoDB Streams format.
func ConvertFromKinesisRecord(record lambdaevents.KinesisEventRecord) (*events.Envelope, error) {
	var streamRecord lambdaevents.DynamoDBEventRecord
	if err := json.Unmarshal(record.Kinesis.Data, &streamRecord); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DynamoDB record: %w", err)
	}

	// Only new archive rows matter; updates and deletes never happen.
	if streamRecord.EventName != "INSERT" {
		return nil, nil
	}

	return convertDynamoDBImage(streamRecord.Change.NewImage)
}

// ConvertFromDynamoDBStreamRecord converts a DynamoDB Stream record directly,
// used when consuming the stream without the Kinesis hop (e.g. in tests).
func ConvertFromDynamoDBStreamRecord(record lambdaevents.DynamoDBEventRecord) (*events.Envelope, error) {
	if record.EventName != "INSERT" {
		return nil, nil
	}

	return convertDynamoDBImage(record.Change.NewImage)
}

func convertDynamoDBImage(image map[string]lambdaevents.DynamoDBAttributeValue) (*events.Envelope, error) {
	if image == nil {
		return nil, fmt.Errorf("DynamoDB image is nil")
	}

	env := &events.Envelope{}

	if v, ok := image["id"]; ok {
		env.ID = v.String()
	}
	if v, ok := image["order_id"]; ok {
		env.OrderID = v.String()
	}
	if v, ok := image["event_type"]; ok {
		env.Type = v.String()
	}
	if v, ok := image["data"]; ok {
		env.Data = json.RawMessage(v.String())
	}
	if v, ok := image["created_at"]; ok {
		t, err := time.Parse(time.RFC3339Nano, v.String())
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		env.Timestamp = t
	}

	if env.ID == "" || env.OrderID == "" || env.Type == "" {
		return nil, fmt.Errorf("missing required fields: id=%s, order_id=%s, event_type=%s",
			env.ID, env.OrderID, env.Type)
	}

	return env, nil
}

// BatchConvertFromKinesisEvent converts all records from a Kinesis event.
// Returns successfully converted envelopes and any errors encountered.
func BatchConvertFromKinesisEvent(kinesisEvent lambdaevents.KinesisEvent) ([]*events.Envelope, []error) {
	var envelopes []*events.Envelope
	var errs []error

	for _, record := range kinesisEvent.Records {
		env, err := ConvertFromKinesisRecord(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", record.EventID, err))
			continue
		}
		if env != nil {
			envelopes = append(envelopes, env)
		}
	}

	return envelopes, errs
}
