package sqs

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/neuro-publico/conversation-engine/internal/domain/port"
)

// Gateway implements port.QueueGateway on AWS SQS.
type Gateway struct {
	client *awssqs.Client
}

type GatewayConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	// EndpointURL, when set, points the client at a custom endpoint such as
	// LocalStack.
	EndpointURL string
}

func NewGateway(ctx context.Context, cfg GatewayConfig) (*Gateway, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awssqs.NewFromConfig(awsCfg, func(o *awssqs.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
	})

	return &Gateway{client: client}, nil
}

// CreateOrGetQueue declares the queue and resolves its URL. CreateQueue is
// idempotent on SQS for an existing queue with identical attributes, so
// concurrent callers converge to the same URL.
func (g *Gateway) CreateOrGetQueue(ctx context.Context, name string) (string, error) {
	_, err := g.client.CreateQueue(ctx, &awssqs.CreateQueueInput{
		QueueName: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("create queue %s: %w", name, err)
	}

	out, err := g.client.GetQueueUrl(ctx, &awssqs.GetQueueUrlInput{
		QueueName: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("get queue url %s: %w", name, err)
	}
	return aws.ToString(out.QueueUrl), nil
}

func (g *Gateway) Send(ctx context.Context, queueURL, body string, attrs map[string]port.Attribute) error {
	msgAttrs := make(map[string]types.MessageAttributeValue, len(attrs))
	for name, attr := range attrs {
		msgAttrs[name] = types.MessageAttributeValue{
			DataType:    aws.String(attr.DataType),
			StringValue: aws.String(attr.Value),
		}
	}

	_, err := g.client.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:          aws.String(queueURL),
		MessageBody:       aws.String(body),
		MessageAttributes: msgAttrs,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (g *Gateway) Receive(ctx context.Context, queueURL string, maxMessages int, wait time.Duration) ([]port.Message, error) {
	out, err := g.client.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:              aws.String(queueURL),
		MaxNumberOfMessages:   int32(maxMessages),
		WaitTimeSeconds:       int32(wait / time.Second),
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return nil, fmt.Errorf("receive messages: %w", err)
	}

	msgs := make([]port.Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		attrs := make(map[string]string, len(m.MessageAttributes))
		for name, v := range m.MessageAttributes {
			attrs[name] = aws.ToString(v.StringValue)
		}
		msgs = append(msgs, port.Message{
			Body:          aws.ToString(m.Body),
			Attributes:    attrs,
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return msgs, nil
}

func (g *Gateway) Delete(ctx context.Context, queueURL, receiptHandle string) error {
	_, err := g.client.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
