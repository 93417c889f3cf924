package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// ErrAlreadyInitialized indicates another manager published the record
// for this cluster first.
var ErrAlreadyInitialized = errors.New("cluster state record already published by another manager")

// Client wraps the DynamoDB client for shared cluster state access.
type Client struct {
	db    *dynamodb.Client
	table string
}

// NewClient creates a state store client for the given table.
// When accessKey is empty the default credential chain is used, which on
// cluster nodes resolves to the instance profile.
func NewClient(ctx context.Context, region, table, accessKey, secretKey string) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{db: dynamodb.NewFromConfig(cfg), table: table}, nil
}

// Publish writes the cluster state record with create-if-absent
// semantics. Re-publishing from the manager that owns the record (same
// rendezvous address) is allowed, so the call stays idempotent for the
// initializer; any other writer gets ErrAlreadyInitialized.
func (c *Client) Publish(ctx context.Context, rec Record) error {
	if rec.PublishedAt.IsZero() {
		rec.PublishedAt = time.Now().UTC()
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal cluster state record: %w", err)
	}

	_, err = c.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(ClusterId) OR ManagerAddr = :addr"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":addr": &types.AttributeValueMemberS{Value: rec.ManagerAddr},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrAlreadyInitialized
		}
		return fmt.Errorf("failed to publish cluster state record: %w", err)
	}

	return nil
}

// Read fetches the record for a cluster with a strongly consistent read.
// An absent record returns (nil, nil): readers treat the record as
// eventually present and re-poll.
func (c *Client) Read(ctx context.Context, clusterID string) (*Record, error) {
	out, err := c.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key: map[string]types.AttributeValue{
			"ClusterId": &types.AttributeValueMemberS{Value: clusterID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cluster state record: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cluster state record: %w", err)
	}

	return &rec, nil
}

// isConditionalCheckFailed checks if the error is a conditional write rejection.
func isConditionalCheckFailed(err error) bool {
	if err == nil {
		return false
	}

	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}

	// Fall back to API error code checking for DynamoDB-compatible
	// endpoints that may not return the exact SDK error types
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ConditionalCheckFailedException"
	}

	return false
}
