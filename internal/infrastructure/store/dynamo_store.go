package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/order-pipeline/internal/domain/audit"
	"github.com/example/order-pipeline/internal/domain/order"
)

// DynamoAPI is the subset of *dynamodb.Client the stores use.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoOrderStore stores one item per order, keyed by OrderId.
type DynamoOrderStore struct {
	client    DynamoAPI
	tableName string
}

// dynamoOrder is the DynamoDB item layout. Items are kept as a JSON string.
type dynamoOrder struct {
	OrderID       string                `dynamodbav:"OrderId"`
	CustomerID    string                `dynamodbav:"CustomerId"`
	CustomerName  string                `dynamodbav:"CustomerName"`
	CustomerEmail string                `dynamodbav:"CustomerEmail"`
	Items         string                `dynamodbav:"Items"`
	TotalAmount   attributevalue.Number `dynamodbav:"TotalAmount"`
	CreatedAt     string                `dynamodbav:"CreatedAt"`
}

func NewDynamoOrderStore(client DynamoAPI, tableName string) *DynamoOrderStore {
	return &DynamoOrderStore{client: client, tableName: tableName}
}

func (s *DynamoOrderStore) Save(ctx context.Context, sub order.Submission) (*order.Order, error) {
	o := newOrder(sub)

	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("store: marshal items: %w", err)
	}

	av, err := attributevalue.MarshalMap(dynamoOrder{
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Items:         string(items),
		TotalAmount:   attributevalue.Number(o.TotalAmount.String()),
		CreatedAt:     o.CreatedAtString(),
	})
	if err != nil {
		return nil, fmt.Errorf("store: marshal order: %w", err)
	}

	// Order IDs are never reused, so an existing item means something is badly wrong.
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(OrderId)"),
	})
	if err != nil {
		return nil, fmt.Errorf("store: put order %s into %s: %w", o.ID, s.tableName, err)
	}

	return o, nil
}

func (s *DynamoOrderStore) Get(ctx context.Context, orderID string) (*order.Order, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"OrderId": &types.AttributeValueMemberS{Value: orderID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("store: get order %s: %w", orderID, err)
	}
	if result.Item == nil {
		return nil, order.ErrOrderNotFound
	}

	var item dynamoOrder
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("store: unmarshal order: %w", err)
	}

	o := &order.Order{
		ID:            item.OrderID,
		CustomerID:    item.CustomerID,
		CustomerName:  item.CustomerName,
		CustomerEmail: item.CustomerEmail,
	}
	if err := json.Unmarshal([]byte(item.Items), &o.Items); err != nil {
		return nil, fmt.Errorf("store: decode items: %w", err)
	}
	if o.TotalAmount, err = order.ParseMoney(string(item.TotalAmount)); err != nil {
		return nil, fmt.Errorf("store: parse total: %w", err)
	}
	if o.CreatedAt, err = time.Parse(order.TimeLayout, item.CreatedAt); err != nil {
		return nil, fmt.Errorf("store: parse created_at: %w", err)
	}
	return o, nil
}

// DynamoAuditStore writes audit records keyed by AuditId.
type DynamoAuditStore struct {
	client    DynamoAPI
	tableName string
}

type dynamoAuditDetails struct {
	CustomerID    string                `dynamodbav:"CustomerId"`
	CustomerName  string                `dynamodbav:"CustomerName"`
	CustomerEmail string                `dynamodbav:"CustomerEmail"`
	ItemCount     int                   `dynamodbav:"ItemCount"`
	TotalAmount   attributevalue.Number `dynamodbav:"TotalAmount"`
}

type dynamoAudit struct {
	AuditID      string             `dynamodbav:"AuditId"`
	Timestamp    string             `dynamodbav:"Timestamp"`
	OrderID      string             `dynamodbav:"OrderId"`
	EventType    string             `dynamodbav:"EventType"`
	OrderDetails dynamoAuditDetails `dynamodbav:"OrderDetails"`
}

func NewDynamoAuditStore(client DynamoAPI, tableName string) *DynamoAuditStore {
	return &DynamoAuditStore{client: client, tableName: tableName}
}

func (s *DynamoAuditStore) Put(ctx context.Context, rec audit.Record) error {
	av, err := attributevalue.MarshalMap(dynamoAudit{
		AuditID:   rec.AuditID,
		Timestamp: rec.Timestamp.Format(order.TimeLayout),
		OrderID:   rec.OrderID,
		EventType: rec.EventType,
		OrderDetails: dynamoAuditDetails{
			CustomerID:    rec.OrderDetails.CustomerID,
			CustomerName:  rec.OrderDetails.CustomerName,
			CustomerEmail: rec.OrderDetails.CustomerEmail,
			ItemCount:     rec.OrderDetails.ItemCount,
			TotalAmount:   attributevalue.Number(rec.OrderDetails.TotalAmount.String()),
		},
	})
	if err != nil {
		return fmt.Errorf("store: marshal audit record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(AuditId)"),
	})
	if err != nil {
		return fmt.Errorf("store: put audit record %s into %s: %w", rec.AuditID, s.tableName, err)
	}
	return nil
}
