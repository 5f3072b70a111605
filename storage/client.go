// Package storage talks to the S3-compatible bucket that hosts all media.
// Objects are addressed by a bare public id, the resource type (image vs
// raw file) selects the key namespace inside the configured folder.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

const (
	ResourceImage = "image"
	ResourceRaw   = "raw"
)

// UploadResult mirrors what the media host reports back for one object.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	ThumbURL string `json:"thumb_url,omitempty"`
	Format   string `json:"format,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// ImagePayload is one image to store, already read into memory.
type ImagePayload struct {
	Data        []byte
	ContentType string
}

// DestroyRef names one object scheduled for deletion.
type DestroyRef struct {
	PublicID     string
	ResourceType string
}

// MediaStore is the surface handlers and the cleanup queue depend on.
type MediaStore interface {
	UploadImages(ctx context.Context, payloads []ImagePayload) ([]UploadResult, error)
	UploadImageStream(ctx context.Context, r io.Reader, size int64, contentType string) (*UploadResult, error)
	UploadFile(ctx context.Context, data []byte, filename string) (*UploadResult, error)
	// Destroy removes one object. Already-absent objects count as success
	// with result "not found".
	Destroy(ctx context.Context, publicID, resourceType string) (string, error)
	// DestroyFile removes a file whose resource type is unknown by probing
	// raw, then image, then untyped keys.
	DestroyFile(ctx context.Context, publicID string) (string, error)
}

type Client struct {
	C       *s3.Client
	Bucket  *string
	baseURL string
	folder  string
}

// NewClient builds the bucket client from config and verifies the bucket
// exists before the server starts taking uploads.
func NewClient(ctx context.Context) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("media.access_key_id"),
			viper.GetString("media.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("media.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(viper.GetString("media.endpoint"))
		o.Region = "auto"
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &Client{
		C:       client,
		Bucket:  bucket,
		baseURL: strings.TrimSuffix(viper.GetString("media.base_url"), "/"),
		folder:  viper.GetString("media.folder"),
	}, nil
}

func (c *Client) uploader() *manager.Uploader {
	return manager.NewUploader(c.C, func(u *manager.Uploader) {
		u.Concurrency = 5
		u.PartSize = 5 << 20
	})
}

// keyFor maps a public id and resource type to the object key. An empty
// resource type is the untyped legacy hypothesis where the id was stored
// directly under the folder.
func (c *Client) keyFor(publicID, resourceType string) string {
	switch resourceType {
	case ResourceImage:
		return c.folder + "/images/" + publicID
	case ResourceRaw:
		return c.folder + "/files/" + publicID
	default:
		return c.folder + "/" + publicID
	}
}

func (c *Client) thumbKey(publicID string) string {
	return c.folder + "/thumbs/" + publicID + ".jpg"
}

func (c *Client) urlFor(key string) string {
	return c.baseURL + "/" + key
}
