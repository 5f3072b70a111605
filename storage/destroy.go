package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Destroy removes the object behind publicID. Objects that are already
// gone count as success so repeated deletes stay idempotent. Image
// destroys also drop the generated thumbnail.
func (c *Client) Destroy(ctx context.Context, publicID, resourceType string) (string, error) {
	key := c.keyFor(publicID, resourceType)

	exists, err := c.exists(ctx, key)
	if err != nil {
		return "", err
	}

	if !exists {
		return "not found", nil
	}

	_, err = c.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: c.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete object, %w", err)
	}

	if resourceType == ResourceImage {
		_, err := c.C.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: c.Bucket,
			Key:    aws.String(c.thumbKey(publicID)),
		})
		if err != nil {
			zap.L().Warn("Failed to delete thumbnail", zap.String("public_id", publicID), zap.Error(err))
		}
	}

	return "ok", nil
}

// DestroyFile removes a stored file when the caller doesn't know which
// resource type the id was stored under. The store can't be asked, so the
// hypotheses are tried in order: raw, image, untyped. All misses means
// the object is already gone, which is fine.
func (c *Client) DestroyFile(ctx context.Context, publicID string) (string, error) {
	var lastErr error

	for _, rt := range []string{ResourceRaw, ResourceImage, ""} {
		res, err := c.Destroy(ctx, publicID, rt)
		if err != nil {
			lastErr = err
			continue
		}

		if res == "ok" {
			return res, nil
		}
	}

	if lastErr != nil {
		return "", lastErr
	}

	return "not found", nil
}

func (c *Client) exists(ctx context.Context, key string) (bool, error) {
	_, err := c.C.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: c.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return false, nil
		}

		return false, fmt.Errorf("failed to check if object exists, %w", err)
	}

	return true, nil
}
