// utils/s3.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var s3Client *s3.Client
var s3Bucket string
var cdnBaseURL string

// InitS3 configures the S3-compatible client used for venue photos. The
// endpoint override supports R2/minio-style deployments.
func InitS3() error {
	endpoint := os.Getenv("S3_ENDPOINT")
	accessKeyID := os.Getenv("S3_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("S3_ACCESS_KEY_SECRET")
	region := os.Getenv("S3_REGION")
	s3Bucket = os.Getenv("S3_BUCKET_NAME")
	cdnBaseURL = os.Getenv("CDN_BASE_URL")
	if region == "" {
		region = "auto"
	}
	if cdnBaseURL == "" {
		cdnBaseURL = fmt.Sprintf("%s/%s", endpoint, s3Bucket)
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
	}
	if endpoint != "" {
		opts = append(opts, config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint}, nil
			}),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return fmt.Errorf("failed to load S3 config: %w", err)
	}

	s3Client = s3.NewFromConfig(cfg)
	return nil
}

// UploadFileToS3 uploads a multipart file and returns its public URL.
// key is the object key (e.g., "matchings/seoul-olympic-park-abc123.jpg")
func UploadFileToS3(fileHeader *multipart.FileHeader, key string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = s3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s3Bucket),
		Key:         aws.String(key),
		Body:        buf,
		ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("%s/%s", cdnBaseURL, key), nil
}
