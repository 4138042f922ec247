package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

type MessageType string

const (
	MessageTypeSecurityEvent MessageType = "SECURITY_EVENT"
)

type Message struct {
	Type      MessageType            `json:"type"`
	TenantID  string                 `json:"tenant_id"`
	Events    []domain.SecurityEvent `json:"events"`
	Timestamp time.Time              `json:"timestamp"`
}

// ReceivedMessage carries Err when the body could not be decoded; such
// messages should be deleted rather than retried.
type ReceivedMessage struct {
	Message       Message
	ReceiptHandle *string
	Err           error
}

// API is the part of the SQS client the service uses
type API interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type SQSService struct {
	client   API
	queueURL string
}

func NewSQSService(client API, config *config.SQSConfig) *SQSService {
	return &SQSService{
		client:   client,
		queueURL: config.SecurityEventQueueURL,
	}
}

func (s *SQSService) QueueURL() string {
	return s.queueURL
}

func (s *SQSService) PublishSecurityEvent(ctx context.Context, event *domain.SecurityEvent) error {
	msg := Message{
		Type:      MessageTypeSecurityEvent,
		TenantID:  event.TenantID,
		Events:    []domain.SecurityEvent{*event},
		Timestamp: event.Timestamp,
	}

	return s.sendMessage(ctx, msg)
}

func (s *SQSService) sendMessage(ctx context.Context, msg Message) error {
	msgBody, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	input := &sqs.SendMessageInput{
		MessageBody: aws.String(string(msgBody)),
		QueueUrl:    aws.String(s.queueURL),
	}

	_, err = s.client.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (s *SQSService) ReceiveMessages(ctx context.Context, maxMessages int32, waitTimeSeconds int32) ([]ReceivedMessage, error) {
	input := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(s.queueURL),
		MaxNumberOfMessages: maxMessages,
		WaitTimeSeconds:     waitTimeSeconds,
	}

	output, err := s.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	messages := make([]ReceivedMessage, 0, len(output.Messages))
	for _, msg := range output.Messages {
		received := ReceivedMessage{ReceiptHandle: msg.ReceiptHandle}
		if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &received.Message); err != nil {
			received.Err = fmt.Errorf("failed to unmarshal message: %w", err)
		}
		messages = append(messages, received)
	}

	return messages, nil
}

func (s *SQSService) DeleteMessage(ctx context.Context, receiptHandle *string) error {
	input := &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: receiptHandle,
	}

	_, err := s.client.DeleteMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}
