package utils

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Config carries the Cloudflare R2 settings for exported reports.
type R2Config struct {
	Bucket          string
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string // e.g. https://<bucket>.<account_id>.r2.cloudflarestorage.com
}

// Configured reports whether the settings are complete enough to build a
// client. Report exports skip the upload step when they are not.
func (c R2Config) Configured() bool {
	return c.Bucket != "" && c.AccountID != "" && c.PublicURL != ""
}

// R2Uploader pushes exported report PDFs to an R2 bucket.
type R2Uploader struct {
	client     *s3.Client
	bucket     string
	publicBase string
}

func NewR2Uploader(r2 R2Config) (*R2Uploader, error) {
	if !r2.Configured() {
		return nil, fmt.Errorf("incomplete R2 configuration")
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID)
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:           endpoint,
			SigningRegion: "auto",
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			r2.AccessKeyID,
			r2.SecretAccessKey,
			"",
		)),
		config.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %v", err)
	}

	return &R2Uploader{
		client:     s3.NewFromConfig(cfg),
		bucket:     r2.Bucket,
		publicBase: strings.TrimRight(r2.PublicURL, "/"),
	}, nil
}

// Upload stores the PDF under the file's base name and returns its public
// URL.
func (u *R2Uploader) Upload(ctx context.Context, fileBytes []byte, filename string) (string, error) {
	key := filepath.Base(filename)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(fileBytes),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %v", err)
	}
	return u.objectURL(key), nil
}

func (u *R2Uploader) objectURL(key string) string {
	return fmt.Sprintf("%s/%s", u.publicBase, url.PathEscape(key))
}
