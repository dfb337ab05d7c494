package dynamostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ridersklan/preorderflow/internal/aws"
	"github.com/ridersklan/preorderflow/internal/orders"
)

// Store keeps orders in a DynamoDB table keyed by id.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
}

var (
	_ orders.Backend = (*Store)(nil)
	_ orders.Getter  = (*Store)(nil)
)

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
	}
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func isConditionFailed(err error) bool {
	var cc *types.ConditionalCheckFailedException
	return errors.As(err, &cc)
}

// List scans the whole table, following pagination.
func (s *Store) List(ctx context.Context) ([]orders.Order, error) {
	out := []orders.Order{}
	var startKey map[string]types.AttributeValue
	for {
		page, err := s.client.Scan(ctx, &dyn.ScanInput{
			TableName:         &s.tableName,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan orders: %w", err)
		}
		var batch []orders.Order
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		out = append(out, batch...)
		if len(page.LastEvaluatedKey) == 0 {
			return out, nil
		}
		startKey = page.LastEvaluatedKey
	}
}

// Get fetches an order by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, id string) (*orders.Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       idKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o orders.Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// Insert puts the order unless its id already exists.
func (s *Store) Insert(ctx context.Context, o orders.Order) (bool, error) {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return false, fmt.Errorf("marshal order: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return false, nil
		}
		return false, fmt.Errorf("put item: %w", err)
	}
	return true, nil
}

// UpdateStatus sets the status of an existing order and returns the new
// item. Returns (nil, nil) when the id is unknown.
func (s *Store) UpdateStatus(ctx context.Context, id, status string) (*orders.Order, error) {
	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       idKey(id),
		UpdateExpression:          awsString("SET #s = :new"),
		ConditionExpression:       awsString("attribute_exists(id)"),
		ExpressionAttributeNames:  map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":new": &types.AttributeValueMemberS{Value: status}},
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	var o orders.Order
	if err := attributevalue.UnmarshalMap(out.Attributes, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// Delete removes the order, reporting false when it did not exist.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName:           &s.tableName,
		Key:                 idKey(id),
		ConditionExpression: awsString("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete item: %w", err)
	}
	return true, nil
}

// Clear deletes every order one by one.
func (s *Store) Clear(ctx context.Context) error {
	var startKey map[string]types.AttributeValue
	for {
		page, err := s.client.Scan(ctx, &dyn.ScanInput{
			TableName:            &s.tableName,
			ExclusiveStartKey:    startKey,
			ProjectionExpression: awsString("id"),
		})
		if err != nil {
			return fmt.Errorf("scan orders: %w", err)
		}
		for _, item := range page.Items {
			if _, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
				TableName: &s.tableName,
				Key:       map[string]types.AttributeValue{"id": item["id"]},
			}); err != nil {
				return fmt.Errorf("delete item: %w", err)
			}
		}
		if len(page.LastEvaluatedKey) == 0 {
			return nil
		}
		startKey = page.LastEvaluatedKey
	}
}

func awsString(s string) *string { return &s }
