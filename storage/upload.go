package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const thumbWidth = 400

// UploadImages stores every payload independently and in parallel. If any
// upload fails the whole batch fails and already-stored objects are
// deleted again so nothing leaks.
func (c *Client) UploadImages(ctx context.Context, payloads []ImagePayload) ([]UploadResult, error) {
	if len(payloads) == 0 {
		return []UploadResult{}, nil
	}

	results := make([]UploadResult, len(payloads))
	errChan := make(chan error, len(payloads))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		uploaded []DestroyRef
	)

	for i, p := range payloads {
		wg.Add(1)

		go func(i int, p ImagePayload) {
			defer wg.Done()

			res, err := c.putImage(ctx, p)
			if err != nil {
				errChan <- err
				return
			}

			results[i] = *res

			mu.Lock()
			uploaded = append(uploaded, DestroyRef{PublicID: res.PublicID, ResourceType: ResourceImage})
			mu.Unlock()

			errChan <- nil
		}(i, p)
	}

	for range payloads {
		if err := <-errChan; err != nil {
			cancel()
			wg.Wait()

			mu.Lock()
			refs := uploaded
			mu.Unlock()

			for _, ref := range refs {
				if _, derr := c.Destroy(context.Background(), ref.PublicID, ref.ResourceType); derr != nil {
					zap.L().Error("Failed to clean up after failed upload", zap.String("public_id", ref.PublicID), zap.Error(derr))
				} else {
					zap.L().Debug("Cleaned up after failed upload", zap.String("public_id", ref.PublicID))
				}
			}

			return nil, err
		}
	}

	wg.Wait()
	return results, nil
}

func (c *Client) putImage(ctx context.Context, p ImagePayload) (*UploadResult, error) {
	ct := p.ContentType
	if ct == "" {
		ct = mimetype.Detect(p.Data).String()
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate public id, %w", err)
	}

	key := c.keyFor(id, ResourceImage)

	_, err = c.C.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        c.Bucket,
		Key:           aws.String(key),
		Body:          bytes.NewReader(p.Data),
		ContentLength: aws.Int64(int64(len(p.Data))),
		ContentType:   aws.String(ct),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image, %w", err)
	}

	res := &UploadResult{
		URL:      c.urlFor(key),
		PublicID: id,
		Format:   ct,
	}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(p.Data)); err == nil {
		res.Width = cfg.Width
		res.Height = cfg.Height
	}

	// Thumbnail is a nicety, never fail the upload over it
	if thumbURL, err := c.putThumb(ctx, id, p.Data); err != nil {
		zap.L().Warn("Failed to generate thumbnail", zap.String("public_id", id), zap.Error(err))
	} else {
		res.ThumbURL = thumbURL
	}

	return res, nil
}

func (c *Client) putThumb(ctx context.Context, publicID string, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image, %w", err)
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail, %w", err)
	}

	key := c.thumbKey(publicID)

	_, err = c.C.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        c.Bucket,
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String("image/jpeg"),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload thumbnail, %w", err)
	}

	return c.urlFor(key), nil
}

// UploadImageStream stores a single image without buffering it whole,
// used by the direct upload endpoint. No thumbnail or dimensions here,
// the payload is never fully in memory.
func (c *Client) UploadImageStream(ctx context.Context, r io.Reader, size int64, contentType string) (*UploadResult, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate public id, %w", err)
	}

	key := c.keyFor(id, ResourceImage)

	input := &s3.PutObjectInput{
		Bucket:       c.Bucket,
		Key:          aws.String(key),
		Body:         r,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := c.uploader().Upload(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to upload image, %w", err)
	}

	return &UploadResult{
		URL:      c.urlFor(key),
		PublicID: id,
		Format:   contentType,
	}, nil
}

// UploadFile stores an arbitrary binary under the raw namespace. The
// resource type is detected from content, the filename hint only
// contributes the extension carried in the public id.
func (c *Client) UploadFile(ctx context.Context, data []byte, filename string) (*UploadResult, error) {
	mime := mimetype.Detect(data)

	ext := path.Ext(filename)
	if ext == "" {
		ext = mime.Extension()
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate public id, %w", err)
	}
	id += ext

	key := c.keyFor(id, ResourceRaw)

	_, err = c.C.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        c.Bucket,
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mime.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file, %w", err)
	}

	return &UploadResult{
		URL:      c.urlFor(key),
		PublicID: id,
		Format:   mime.String(),
	}, nil
}
