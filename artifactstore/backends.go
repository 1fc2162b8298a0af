package artifactstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Backend opens artifacts for one location scheme. The caller closes the reader.
type Backend interface {
	Open(ctx context.Context, loc Location) (io.ReadCloser, error)
}

type fileBackend struct{}

func (fileBackend) Open(_ context.Context, loc Location) (io.ReadCloser, error) {
	f, err := os.Open(loc.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
	case errors.Is(err, os.ErrPermission):
		return nil, fmt.Errorf("%w: %s", ErrForbidden, loc)
	case err != nil:
		return nil, fmt.Errorf("open %s: %w", loc, err)
	}
	return f, nil
}

// s3Backend loads the default AWS credential chain on first use.
type s3Backend struct {
	region string

	once   sync.Once
	client *s3.Client
	err    error
}

func (b *s3Backend) init(ctx context.Context) (*s3.Client, error) {
	b.once.Do(func() {
		var opts []func(*config.LoadOptions) error
		if b.region != "" {
			opts = append(opts, config.WithRegion(b.region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			b.err = fmt.Errorf("load aws config: %w", err)
			return
		}
		b.client = s3.NewFromConfig(cfg)
	})
	return b.client, b.err
}

func (b *s3Backend) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	client, err := b.init(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, classifyS3Error(loc, err)
	}
	return out.Body, nil
}

func classifyS3Error(loc Location, err error) error {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return fmt.Errorf("%w: %s", ErrNotFound, loc)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket", "NotFound":
			return fmt.Errorf("%w: %s", ErrNotFound, loc)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%w: %s: %s", ErrForbidden, loc, apiErr.ErrorMessage())
		}
	}
	return fmt.Errorf("get %s: %w", loc, err)
}

type azureBackend struct {
	client *azblob.Client
}

func newAzureBackend(connectionString string) (*azureBackend, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &azureBackend{client: client}, nil
}

func (b *azureBackend) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	resp, err := b.client.DownloadStream(ctx, loc.Bucket, loc.Key, nil)
	if err != nil {
		switch {
		case bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound):
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		case bloberror.HasCode(err, bloberror.AuthorizationFailure, bloberror.AuthenticationFailed, bloberror.InsufficientAccountPermissions):
			return nil, fmt.Errorf("%w: %s", ErrForbidden, loc)
		}
		return nil, fmt.Errorf("download blob %s: %w", loc, err)
	}
	return resp.Body, nil
}
