package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

const defaultContentType = "application/pdf"

// S3Store keeps invoice documents in S3-compatible storage (Supabase Storage)
type S3Store struct {
	s3Client *s3.S3
	bucket   string
}

// Config holds configuration for the S3 store
type Config struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	Region          string
	Timeout         time.Duration
}

// NewS3Store creates a new S3 store
func NewS3Store(config *Config) (*S3Store, error) {
	if config.Endpoint == "" || config.AccessKeyID == "" || config.AccessKeySecret == "" {
		return nil, fmt.Errorf("S3 configuration is incomplete")
	}

	if config.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is not configured")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(config.Region),
		Endpoint:         aws.String(strings.TrimRight(config.Endpoint, "/") + "/storage/v1/s3"),
		Credentials:      credentials.NewStaticCredentials(config.AccessKeyID, config.AccessKeySecret, ""),
		S3ForcePathStyle: aws.Bool(true),
		HTTPClient:       &http.Client{Timeout: timeout},
		MaxRetries:       aws.Int(0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return &S3Store{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
	}, nil
}

// Put uploads data under key. Without Overwrite an existing key fails with ErrAlreadyExists.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, opts PutOptions) error {
	if !opts.Overwrite {
		exists, err := s.Exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return &StorageError{Op: "put", Key: key, Err: ErrAlreadyExists}
		}
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return &StorageError{Op: "put", Key: key, Err: fmt.Errorf("failed to upload to S3: %w", err)}
	}
	return nil
}

// Exists reports whether an object is stored under key
func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.s3Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, &StorageError{Op: "exists", Key: key, Err: err}
}

// Get downloads the object stored under key
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, &StorageError{Op: "get", Key: key, Err: ErrNotFound}
		}
		return nil, &StorageError{Op: "get", Key: key, Err: err}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &StorageError{Op: "get", Key: key, Err: fmt.Errorf("failed to read object: %w", err)}
	}
	return data, nil
}

// SignedURL presigns a GET for key, valid for ttl
func (s *S3Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", &StorageError{Op: "signed_url", Key: key, Err: ErrNotFound}
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(ttl)
	if err != nil {
		return "", &StorageError{Op: "signed_url", Key: key, Err: fmt.Errorf("failed to presign: %w", err)}
	}
	return url, nil
}

func isNotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case "NotFound", s3.ErrCodeNoSuchKey:
			return true
		}
	}
	return false
}
