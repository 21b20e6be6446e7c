package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/example/order-pipeline/internal/domain/order"
)

// AttributeEventType is the message attribute subscribers can filter on.
const AttributeEventType = "eventType"

// API is the subset of *sns.Client used by Publisher.
type API interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher sends order events to one SNS topic.
type Publisher struct {
	client   API
	topicArn string
}

func NewPublisher(client API, topicArn string) *Publisher {
	return &Publisher{client: client, topicArn: topicArn}
}

func (p *Publisher) Publish(ctx context.Context, o *order.Order) error {
	data, err := json.Marshal(order.NewEvent(o))
	if err != nil {
		return fmt.Errorf("sns: marshal event: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicArn),
		Message:  aws.String(string(data)),
		Subject:  aws.String("Order Created: " + o.ID),
		MessageAttributes: map[string]types.MessageAttributeValue{
			AttributeEventType: {
				DataType:    aws.String("String"),
				StringValue: aws.String(order.EventTypeOrderCreated),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns: publish order %s: %w", o.ID, err)
	}
	return nil
}
