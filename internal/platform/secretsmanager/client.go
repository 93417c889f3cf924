// Package secretsmanager provides the external secret store the
// certificate bundle password is persisted to.
//
// Each environment owns one JSON document; the password lives under a
// single well-known key and every other key in the document is preserved
// verbatim on update.
package secretsmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
)

// Client wraps the Secrets Manager client for one environment document.
type Client struct {
	sm *secretsmanager.Client
}

// NewClient creates a secret store client. When accessKey is empty the
// default credential chain is used.
func NewClient(ctx context.Context, region, accessKey, secretKey string) (*Client, error) {
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

	return &Client{sm: secretsmanager.NewFromConfig(cfg)}, nil
}

// MergeKey sets key to value inside the JSON document stored under
// secretID, preserving all other keys, and creates the document if it
// does not exist yet.
func (c *Client) MergeKey(ctx context.Context, secretID, key, value string) error {
	current, exists, err := c.getDocument(ctx, secretID)
	if err != nil {
		return err
	}

	merged, err := mergeDocument(current, key, value)
	if err != nil {
		return fmt.Errorf("failed to merge secret document %s: %w", secretID, err)
	}

	if !exists {
		_, err = c.sm.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
			Name:         aws.String(secretID),
			SecretString: aws.String(string(merged)),
		})
		if err != nil {
			return fmt.Errorf("failed to create secret %s: %w", secretID, err)
		}
		return nil
	}

	_, err = c.sm.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(secretID),
		SecretString: aws.String(string(merged)),
	})
	if err != nil {
		return fmt.Errorf("failed to update secret %s: %w", secretID, err)
	}

	return nil
}

// getDocument fetches the current document, reporting absence instead of
// erroring when the secret has never been created.
func (c *Client) getDocument(ctx context.Context, secretID string) ([]byte, bool, error) {
	out, err := c.sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read secret %s: %w", secretID, err)
	}

	if out.SecretString == nil {
		return nil, true, nil
	}
	return []byte(*out.SecretString), true, nil
}

// mergeDocument sets key to value inside a JSON object document. An
// empty document starts a new object; anything that is not a JSON object
// is rejected rather than silently overwritten.
func mergeDocument(current []byte, key, value string) ([]byte, error) {
	doc := map[string]interface{}{}
	if len(current) > 0 {
		if err := json.Unmarshal(current, &doc); err != nil {
			return nil, fmt.Errorf("existing value is not a JSON object: %w", err)
		}
	}

	doc[key] = value

	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal merged document: %w", err)
	}
	return merged, nil
}

// isNotFoundError checks if the error indicates the secret does not exist.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ResourceNotFoundException"
	}

	return false
}
