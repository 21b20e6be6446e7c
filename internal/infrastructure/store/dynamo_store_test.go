package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/example/order-pipeline/internal/domain/audit"
	"github.com/example/order-pipeline/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	puts   []*dynamodb.PutItemInput
	items  map[string]map[string]types.AttributeValue
	putErr error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	if id, ok := in.Item["OrderId"].(*types.AttributeValueMemberS); ok {
		f.items[id.Value] = in.Item
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	id := in.Key["OrderId"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[id]}, nil
}

func TestDynamoOrderStore_Save(t *testing.T) {
	client := newFakeDynamo()
	s := NewDynamoOrderStore(client, "orders")

	o, err := s.Save(context.Background(), testSubmission())
	require.NoError(t, err)

	require.Len(t, client.puts, 1)
	put := client.puts[0]
	assert.Equal(t, "orders", aws.ToString(put.TableName))
	assert.Equal(t, "attribute_not_exists(OrderId)", aws.ToString(put.ConditionExpression))
	assert.Equal(t, &types.AttributeValueMemberS{Value: o.ID}, put.Item["OrderId"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "19.98"}, put.Item["TotalAmount"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "jane@example.com"}, put.Item["CustomerEmail"])
}

func TestDynamoOrderStore_GetRoundTrip(t *testing.T) {
	client := newFakeDynamo()
	s := NewDynamoOrderStore(client, "orders")
	ctx := context.Background()

	saved, err := s.Save(ctx, testSubmission())
	require.NoError(t, err)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "Jane Doe", got.CustomerName)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "P1", got.Items[0].ProductID)
	assert.Equal(t, "19.98", got.Items[0].Subtotal.String())
	assert.Equal(t, "19.98", got.TotalAmount.String())
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
}

func TestDynamoOrderStore_GetNotFound(t *testing.T) {
	s := NewDynamoOrderStore(newFakeDynamo(), "orders")

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestDynamoOrderStore_SaveError(t *testing.T) {
	client := newFakeDynamo()
	client.putErr = errors.New("throttled")
	s := NewDynamoOrderStore(client, "orders")

	o, err := s.Save(context.Background(), testSubmission())
	assert.Nil(t, o)
	assert.ErrorIs(t, err, client.putErr)
}

func TestDynamoAuditStore_Put(t *testing.T) {
	client := newFakeDynamo()
	s := NewDynamoAuditStore(client, "audit")

	o := order.New(testSubmission(), "order-1", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	rec := audit.NewRecord(order.NewEvent(o), "audit-1", time.Date(2024, 1, 2, 3, 4, 6, 0, time.UTC))

	require.NoError(t, s.Put(context.Background(), rec))
	require.Len(t, client.puts, 1)

	put := client.puts[0]
	assert.Equal(t, "audit", aws.ToString(put.TableName))
	assert.Equal(t, "attribute_not_exists(AuditId)", aws.ToString(put.ConditionExpression))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "audit-1"}, put.Item["AuditId"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: order.EventTypeOrderCreated}, put.Item["EventType"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2024-01-02T03:04:06Z"}, put.Item["Timestamp"])

	details, ok := put.Item["OrderDetails"].(*types.AttributeValueMemberM)
	require.True(t, ok)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "1"}, details.Value["ItemCount"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "19.98"}, details.Value["TotalAmount"])
}
