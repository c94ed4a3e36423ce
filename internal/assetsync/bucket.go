package assetsync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/kozaktomas/style-genie/internal/config"
	"github.com/kozaktomas/style-genie/internal/constants"
)

// Object is one file in the asset bucket.
type Object struct {
	Key         string
	Size        int64
	ContentType string
}

// Bucket is the storage the sync reads hairstyle images from.
type Bucket interface {
	List(ctx context.Context) ([]Object, error)
	Download(ctx context.Context, key string) ([]byte, error)
	PublicURL(key string) string
}

// S3Bucket reads assets from an S3 (or S3-compatible) bucket.
type S3Bucket struct {
	client    *s3.S3
	name      string
	urlPrefix string
}

// NewS3Bucket creates a bucket client from storage config.
func NewS3Bucket(cfg *config.StorageConfig) (*S3Bucket, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Bucket{
		client:    s3.New(sess),
		name:      cfg.Bucket,
		urlPrefix: cfg.AssetURLPrefix(),
	}, nil
}

func (b *S3Bucket) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	err := b.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.name),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:  aws.StringValue(obj.Key),
				Size: aws.Int64Value(obj.Size),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket %s: %w", b.name, err)
	}
	return objects, nil
}

func (b *S3Bucket) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(out.Body, constants.MaxAssetDownloadSize)); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// PublicURL is the URL stored in the catalog for key.
func (b *S3Bucket) PublicURL(key string) string {
	return b.urlPrefix + (&url.URL{Path: key}).EscapedPath()
}
