package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"classroom/models"
)

const (
	// sortKeyLayout is fixed width so that keys sort chronologically.
	sortKeyLayout = "2006-01-02T15:04:05.000000000Z"
	// batchWriteLimit is the DynamoDB BatchWriteItem maximum.
	batchWriteLimit = 25
	maxBatchRounds  = 3
)

// dynamodbAPI is the subset of the DynamoDB client used by DynamoStore.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// DynamoStore keeps conversation histories in a DynamoDB table keyed by
// ColID (hash) and Timestamp (range).
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewDynamoStore(api dynamodbAPI, tableName string) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("dynamodb store: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("dynamodb store: table name must not be empty")
	}
	return &DynamoStore{api: api, tableName: tableName, now: time.Now}, nil
}

// NewDynamoDBClient loads the AWS configuration for region. A non-empty
// endpoint points the client at DynamoDB Local with dummy credentials.
func NewDynamoDBClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if endpoint != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID: "dummy", SecretAccessKey: "dummy", SessionToken: "dummy",
			},
		}))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// EnsureTable creates the conversations table if it does not exist yet.
func (s *DynamoStore) EnsureTable(ctx context.Context) error {
	_, err := s.api.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("ColID"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("Timestamp"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("ColID"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("Timestamp"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.tableName, err)
	}
	return nil
}

func (s *DynamoStore) Append(ctx context.Context, colID string, msg models.Message) error {
	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"ColID":     &types.AttributeValueMemberS{Value: colID},
			"Timestamp": &types.AttributeValueMemberS{Value: s.nextSortKey()},
			"Text":      &types.AttributeValueMemberS{Value: msg.Text},
			"Sender":    &types.AttributeValueMemberS{Value: msg.Sender},
			"SentAt":    &types.AttributeValueMemberS{Value: msg.Timestamp},
		},
	})
	if err != nil {
		return fmt.Errorf("put message: %w", err)
	}
	return nil
}

func (s *DynamoStore) Get(ctx context.Context, colID string) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	err := s.query(ctx, colID, "", func(item map[string]types.AttributeValue) {
		messages = append(messages, models.Message{
			Text:      stringAttr(item, "Text"),
			Sender:    stringAttr(item, "Sender"),
			Timestamp: stringAttr(item, "SentAt"),
		})
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *DynamoStore) Clear(ctx context.Context, colID string) error {
	var deletes []types.WriteRequest
	err := s.query(ctx, colID, "ColID, #ts", func(item map[string]types.AttributeValue) {
		deletes = append(deletes, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: map[string]types.AttributeValue{
				"ColID":     item["ColID"],
				"Timestamp": item["Timestamp"],
			}},
		})
	})
	if err != nil {
		return err
	}

	for start := 0; start < len(deletes); start += batchWriteLimit {
		end := min(start+batchWriteLimit, len(deletes))
		if err := s.batchDelete(ctx, deletes[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *DynamoStore) batchDelete(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{s.tableName: requests}
	for round := 0; round < maxBatchRounds && len(pending[s.tableName]) > 0; round++ {
		out, err := s.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		pending = out.UnprocessedItems
	}
	if n := len(pending[s.tableName]); n > 0 {
		return fmt.Errorf("delete messages: %d items left unprocessed", n)
	}
	return nil
}

// query pages through every item of colID in ascending sort-key order.
func (s *DynamoStore) query(ctx context.Context, colID, projection string, visit func(map[string]types.AttributeValue)) error {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("ColID = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: colID},
		},
		ScanIndexForward: aws.Bool(true),
	}
	if projection != "" {
		in.ProjectionExpression = aws.String(projection)
		in.ExpressionAttributeNames = map[string]string{"#ts": "Timestamp"}
	}

	for {
		out, err := s.api.Query(ctx, in)
		if err != nil {
			return fmt.Errorf("query messages: %w", err)
		}
		for _, item := range out.Items {
			visit(item)
		}
		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// nextSortKey returns a strictly increasing timestamp key for this process.
func (s *DynamoStore) nextSortKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t.Format(sortKeyLayout) + "#" + uuid.NewString()
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
