// Package awssqs adapts github.com/aws/aws-sdk-go-v2/service/sqs to the
// sqslistener.SQSClient contract.
package awssqs

import (
	"context"
	"fmt"

	"github.com/JailtonJunior94/devkit-go/pkg/observability"
	"github.com/JailtonJunior94/devkit-go/pkg/sqslistener"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Config configures the concrete SQS client, including the
// LocalStack/custom-endpoint and static-credentials overrides used in
// local development and integration tests.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// Client implements sqslistener.SQSClient over the real AWS SDK.
type Client struct {
	sqs  *sqs.Client
	o11y observability.Observability
}

var _ sqslistener.SQSClient = (*Client)(nil)

// New builds a Client from cfg, loading AWS credentials and region
// through the SDK's default chain unless static credentials or a
// custom endpoint are supplied.
func New(ctx context.Context, cfg Config, o11y observability.Observability) (*Client, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("awssqs: failed to load AWS config: %w", err)
	}

	var clientOpts []func(*sqs.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return &Client{sqs: sqs.NewFromConfig(awsCfg, clientOpts...), o11y: o11y}, nil
}

// GetQueueURL resolves a queue name to its URL.
func (c *Client) GetQueueURL(ctx context.Context, name string) (string, error) {
	out, err := c.sqs.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
	if err != nil {
		return "", fmt.Errorf("awssqs: failed to resolve queue %q: %w", name, err)
	}
	return aws.ToString(out.QueueUrl), nil
}

// ReceiveMessages long-polls queueURL, requesting every message and
// system attribute SQS exposes.
func (c *Client) ReceiveMessages(ctx context.Context, queueURL string, maxMessages, waitSeconds int32) ([]sqslistener.Message, error) {
	out, err := c.sqs.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(queueURL),
		MaxNumberOfMessages:   maxMessages,
		WaitTimeSeconds:       waitSeconds,
		MessageAttributeNames: []string{"All"},
		AttributeNames:        []types.QueueAttributeName{types.QueueAttributeNameAll},
	})
	if err != nil {
		return nil, fmt.Errorf("awssqs: failed to receive messages: %w", err)
	}

	messages := make([]sqslistener.Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		attrs := make(map[string]string, len(m.MessageAttributes))
		for key, value := range m.MessageAttributes {
			if value.StringValue != nil {
				attrs[key] = *value.StringValue
			}
		}

		messages = append(messages, sqslistener.Message{
			MessageID:               aws.ToString(m.MessageId),
			ReceiptHandle:           aws.ToString(m.ReceiptHandle),
			Body:                    aws.ToString(m.Body),
			Attributes:              attrs,
			ApproximateReceiveCount: approximateReceiveCount(m.Attributes),
		})
	}

	return messages, nil
}

// DeleteMessage removes a single message by receipt handle.
func (c *Client) DeleteMessage(ctx context.Context, queueURL, receiptHandle string) error {
	_, err := c.sqs.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("awssqs: failed to delete message: %w", err)
	}
	return nil
}

// DeleteMessageBatch removes up to ten messages in a single call.
func (c *Client) DeleteMessageBatch(ctx context.Context, queueURL string, receiptHandles []string) error {
	if len(receiptHandles) == 0 {
		return nil
	}
	if len(receiptHandles) > 10 {
		return fmt.Errorf("awssqs: batch delete cannot exceed 10 messages, got %d", len(receiptHandles))
	}

	entries := make([]types.DeleteMessageBatchRequestEntry, 0, len(receiptHandles))
	for i, handle := range receiptHandles {
		entries = append(entries, types.DeleteMessageBatchRequestEntry{
			Id:            aws.String(fmt.Sprintf("msg-%d", i)),
			ReceiptHandle: aws.String(handle),
		})
	}

	out, err := c.sqs.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
		QueueUrl: aws.String(queueURL),
		Entries:  entries,
	})
	if err != nil {
		return fmt.Errorf("awssqs: failed to delete message batch: %w", err)
	}
	if len(out.Failed) > 0 {
		return fmt.Errorf("awssqs: %d messages failed to delete", len(out.Failed))
	}
	return nil
}

// SendMessage publishes body to queueURL and returns the assigned
// message id.
func (c *Client) SendMessage(ctx context.Context, queueURL, body string, attributes map[string]string) (string, error) {
	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(body),
	}

	if len(attributes) > 0 {
		msgAttrs := make(map[string]types.MessageAttributeValue, len(attributes))
		for key, value := range attributes {
			msgAttrs[key] = types.MessageAttributeValue{
				DataType:    aws.String("String"),
				StringValue: aws.String(value),
			}
		}
		input.MessageAttributes = msgAttrs
	}

	out, err := c.sqs.SendMessage(ctx, input)
	if err != nil {
		return "", fmt.Errorf("awssqs: failed to send message: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

func approximateReceiveCount(attrs map[string]string) int {
	val, ok := attrs[string(types.MessageSystemAttributeNameApproximateReceiveCount)]
	if !ok {
		return 0
	}
	var count int
	fmt.Sscanf(val, "%d", &count)
	return count
}
