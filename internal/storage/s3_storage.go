package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/AndreiCalugar/FertiHub/internal/config"
)

const presignTTL = 15 * time.Minute

// IS3Storage defines the interface for S3 operations. Quote documents and
// inquiry attachments are uploaded directly from the browser via pre-signed
// PUT URLs; the backend only hands out the URL and records the object key.
type IS3Storage interface {
	GenerateQuoteUploadURL(ctx context.Context, userID, inquiryID, filename, contentType string) (string, string, error)
	GenerateAttachmentUploadURL(ctx context.Context, userID, inquiryID, filename, contentType string) (string, string, error)
	GeneratePresignedGetURL(ctx context.Context, objectKey string) (string, error)
}

type s3Storage struct {
	cfg           *config.Config
	s3Client      *s3.Client
	presignClient *s3.PresignClient
}

// NewS3Storage creates a new S3 storage service.
func NewS3Storage(cfg *config.Config) (IS3Storage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg)

	return &s3Storage{
		cfg:           cfg,
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
	}, nil
}

// sanitizeFilename keeps only the base name and replaces characters that are
// awkward in S3 keys.
func sanitizeFilename(filename string) string {
	name := path.Base(filename)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}

func (s *s3Storage) presignPut(ctx context.Context, objectKey, contentType string) (string, error) {
	presignedReq, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned PUT URL for key %s: %w", objectKey, err)
	}
	return presignedReq.URL, nil
}

// GenerateQuoteUploadURL creates a pre-signed URL for uploading a quote
// document (PDF or email export). Returns the URL and the S3 object key.
func (s *s3Storage) GenerateQuoteUploadURL(ctx context.Context, userID, inquiryID, filename, contentType string) (string, string, error) {
	objectKey := fmt.Sprintf("quotes/%s/%s/%s_%s", userID, inquiryID, uuid.NewString(), sanitizeFilename(filename))
	url, err := s.presignPut(ctx, objectKey, contentType)
	if err != nil {
		return "", "", err
	}
	return url, objectKey, nil
}

// GenerateAttachmentUploadURL creates a pre-signed URL for uploading an
// inquiry specification attachment. Returns the URL and the S3 object key.
func (s *s3Storage) GenerateAttachmentUploadURL(ctx context.Context, userID, inquiryID, filename, contentType string) (string, string, error) {
	objectKey := fmt.Sprintf("attachments/%s/%s/%s_%s", userID, inquiryID, uuid.NewString(), sanitizeFilename(filename))
	url, err := s.presignPut(ctx, objectKey, contentType)
	if err != nil {
		return "", "", err
	}
	return url, objectKey, nil
}

// GeneratePresignedGetURL creates a time-limited download URL for an object,
// used when embedding attachment links in outbound supplier emails.
func (s *s3Storage) GeneratePresignedGetURL(ctx context.Context, objectKey string) (string, error) {
	presignedReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.AwsS3Bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned GET URL for key %s: %w", objectKey, err)
	}
	return presignedReq.URL, nil
}
