package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"component-generator/internal/domain"
)

const (
	pkPrefixGen = "GEN#"
	skPrefixRun = "RUN#"
	ttlDuration = 30 * 24 * time.Hour // 30-day TTL
)

// ErrNotFound is returned when no generation is stored for a request id.
var ErrNotFound = errors.New("repository: generation not found")

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client wraps a DynamoDB table holding the generation log.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

// genPK returns the DynamoDB partition key for a request.
func genPK(requestID string) string {
	return pkPrefixGen + requestID
}

// runSK returns the sort key for one generation attempt.
func runSK(ts time.Time) string {
	return skPrefixRun + ts.UTC().Format(time.RFC3339Nano)
}

// RecordGeneration stores one generation outcome with a 30-day TTL.
func (c *Client) RecordGeneration(ctx context.Context, log domain.GenerationLog) error {
	if strings.TrimSpace(log.RequestID) == "" {
		return errors.New("repository: RecordGeneration: request id is required")
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = c.now()
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                generationItem(log, c.now().Add(ttlDuration).Unix()),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: RecordGeneration: %w", err)
	}
	return nil
}

// LatestGeneration returns the most recent outcome recorded for requestID.
func (c *Client) LatestGeneration(ctx context.Context, requestID string) (domain.GenerationLog, error) {
	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: genPK(requestID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixRun},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return domain.GenerationLog{}, fmt.Errorf("repository: LatestGeneration query: %w", err)
	}
	if out == nil || len(out.Items) == 0 {
		return domain.GenerationLog{}, ErrNotFound
	}
	log, err := itemToGeneration(out.Items[0])
	if err != nil {
		return domain.GenerationLog{}, fmt.Errorf("repository: LatestGeneration unmarshal: %w", err)
	}
	return log, nil
}

func generationItem(log domain.GenerationLog, ttl int64) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: genPK(log.RequestID)},
		"SK":         &types.AttributeValueMemberS{Value: runSK(log.CreatedAt)},
		"requestId":  &types.AttributeValueMemberS{Value: log.RequestID},
		"prompt":     &types.AttributeValueMemberS{Value: log.Prompt},
		"platform":   &types.AttributeValueMemberS{Value: log.Platform},
		"source":     &types.AttributeValueMemberS{Value: log.Source},
		"durationMs": &types.AttributeValueMemberN{Value: strconv.FormatInt(log.DurationMS, 10)},
		"createdAt":  &types.AttributeValueMemberS{Value: log.CreatedAt.UTC().Format(time.RFC3339Nano)},
		"ttl":        &types.AttributeValueMemberN{Value: strconv.FormatInt(ttl, 10)},
	}
	if log.Stage != "" {
		item["stage"] = &types.AttributeValueMemberS{Value: log.Stage}
		item["reason"] = &types.AttributeValueMemberS{Value: log.Reason}
	}
	return item
}

// itemToGeneration converts a DynamoDB attribute map to a GenerationLog.
func itemToGeneration(item map[string]types.AttributeValue) (domain.GenerationLog, error) {
	requestID, err := strAttr(item, "requestId")
	if err != nil {
		return domain.GenerationLog{}, err
	}
	source, err := strAttr(item, "source")
	if err != nil {
		return domain.GenerationLog{}, err
	}
	created, err := strAttr(item, "createdAt")
	if err != nil {
		return domain.GenerationLog{}, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return domain.GenerationLog{}, fmt.Errorf("repository: parse attribute %q: %w", "createdAt", err)
	}
	duration, err := int64Attr(item, "durationMs")
	if err != nil {
		return domain.GenerationLog{}, err
	}
	prompt, _ := strAttr(item, "prompt")     // allow empty
	platform, _ := strAttr(item, "platform") // allow empty
	stage, _ := strAttr(item, "stage")       // only set on fallback
	reason, _ := strAttr(item, "reason")

	return domain.GenerationLog{
		RequestID:  requestID,
		Prompt:     prompt,
		Platform:   platform,
		Source:     source,
		Stage:      stage,
		Reason:     reason,
		DurationMS: duration,
		CreatedAt:  createdAt,
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func int64Attr(item map[string]types.AttributeValue, key string) (int64, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
