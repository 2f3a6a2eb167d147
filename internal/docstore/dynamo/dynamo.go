// Package dynamo stores documents in a single DynamoDB table keyed by
// collection (PK) and document id (SK).
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/goccy/go-json"

	"github.com/matt-dz/recetario/internal/docstore"
)

const (
	attrPK      = "PK"
	attrSK      = "SK"
	attrCreated = "created"
	attrBody    = "body"
)

// Client is the subset of the DynamoDB API used by Store.
type Client interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type Store struct {
	client    Client
	tableName string
	now       func() time.Time
}

var _ docstore.Store = (*Store)(nil)

func New(client Client, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

type item struct {
	PK      string         `dynamodbav:"PK"`
	SK      string         `dynamodbav:"SK"`
	Created int64          `dynamodbav:"created"`
	Body    map[string]any `dynamodbav:"body"`
}

func getKey(collection, id string) (map[string]types.AttributeValue, error) {
	pk, err := attributevalue.Marshal(collection)
	if err != nil {
		return nil, err
	}
	sk, err := attributevalue.Marshal(id)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{attrPK: pk, attrSK: sk}, nil
}

func (s *Store) marshalItem(collection, id string, body []byte, created int64) (map[string]types.AttributeValue, error) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s document: %w", collection, err)
	}
	av, err := attributevalue.MarshalMap(item{
		PK:      collection,
		SK:      id,
		Created: created,
		Body:    doc,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling %s item: %w", collection, err)
	}
	return av, nil
}

func unmarshalBody(av map[string]types.AttributeValue) ([]byte, int64, error) {
	var it item
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return nil, 0, fmt.Errorf("unmarshaling item: %w", err)
	}
	body, err := json.Marshal(it.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("encoding document: %w", err)
	}
	return body, it.Created, nil
}

func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func (s *Store) Create(ctx context.Context, collection, id string, body []byte) error {
	av, err := s.marshalItem(collection, id, body, s.now().UnixNano())
	if err != nil {
		return err
	}
	expr, err := expression.NewBuilder().WithCondition(
		expression.Name(attrPK).AttributeNotExists().And(expression.Name(attrSK).AttributeNotExists()),
	).Build()
	if err != nil {
		return fmt.Errorf("building condition: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if isConditionFailure(err) {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrConflict)
	} else if err != nil {
		return fmt.Errorf("putting %s item: %w", collection, err)
	}
	return nil
}

func (s *Store) getItem(ctx context.Context, collection, id string) (map[string]types.AttributeValue, error) {
	key, err := getKey(collection, id)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s item: %w", collection, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return out.Item, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	av, err := s.getItem(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	body, _, err := unmarshalBody(av)
	return body, err
}

func (s *Store) Update(ctx context.Context, collection, id string, body []byte) error {
	// Keep the creation time so List order is stable across updates.
	existing, err := s.getItem(ctx, collection, id)
	if err != nil {
		return err
	}
	_, created, err := unmarshalBody(existing)
	if err != nil {
		return err
	}

	av, err := s.marshalItem(collection, id, body, created)
	if err != nil {
		return err
	}
	expr, err := expression.NewBuilder().WithCondition(
		expression.Name(attrPK).AttributeExists().And(expression.Name(attrSK).AttributeExists()),
	).Build()
	if err != nil {
		return fmt.Errorf("building condition: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if isConditionFailure(err) {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	} else if err != nil {
		return fmt.Errorf("putting %s item: %w", collection, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	key, err := getKey(collection, id)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       key,
	}); err != nil {
		return fmt.Errorf("deleting %s item: %w", collection, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([][]byte, error) {
	keyEx := expression.Key(attrPK).Equal(expression.Value(collection))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, fmt.Errorf("building key condition: %w", err)
	}
	return s.query(ctx, collection, expr)
}

func (s *Store) Query(ctx context.Context, collection, field string, value any) ([][]byte, error) {
	keyEx := expression.Key(attrPK).Equal(expression.Value(collection))
	filter := expression.Name(attrBody + "." + field).Equal(expression.Value(value))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return s.query(ctx, collection, expr)
}

type createdBody struct {
	created int64
	body    []byte
}

// query pages through every matching item and returns the bodies in
// creation order.
func (s *Store) query(ctx context.Context, collection string, expr expression.Expression) ([][]byte, error) {
	var (
		found    []createdBody
		startKey map[string]types.AttributeValue
	)
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
			ConsistentRead:            aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("querying %s items: %w", collection, err)
		}
		for _, av := range out.Items {
			body, created, err := unmarshalBody(av)
			if err != nil {
				return nil, err
			}
			found = append(found, createdBody{created: created, body: body})
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].created < found[j].created
	})
	bodies := make([][]byte, 0, len(found))
	for _, f := range found {
		bodies = append(bodies, f.body)
	}
	return bodies, nil
}
