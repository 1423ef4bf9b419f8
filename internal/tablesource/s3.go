package tablesource

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/zapponejosh/lutherald/internal/lectionary"
)

// GetObjectAPI is the part of the S3 client the source needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 reads the three YAML tables from objects under a bucket prefix.
type S3 struct {
	Client GetObjectAPI
	Bucket string
	Prefix string
}

// NewS3 creates an S3 source using the default AWS credential chain.
func NewS3(ctx context.Context, region, bucket, prefix string) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &S3{
		Client: s3.NewFromConfig(awsCfg),
		Bucket: bucket,
		Prefix: prefix,
	}, nil
}

func (s *S3) Load(ctx context.Context) (*lectionary.Tables, error) {
	var raw lectionary.RawTables
	var err error

	if raw.MoveableFeasts, err = s.get(ctx, lectionary.MoveableFeastsFile); err != nil {
		return nil, err
	}
	if raw.EmberDays, err = s.get(ctx, lectionary.EmberDaysFile); err != nil {
		return nil, err
	}
	if raw.Festivals, err = s.get(ctx, lectionary.FestivalsFile); err != nil {
		return nil, err
	}

	return lectionary.Parse(raw)
}

func (s *S3) String() string {
	return "s3://" + path.Join(s.Bucket, s.Prefix)
}

func (s *S3) key(name string) string {
	if s.Prefix == "" {
		return name
	}
	return path.Join(s.Prefix, name)
}

func (s *S3) get(ctx context.Context, name string) ([]byte, error) {
	key := s.key(name)

	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.Bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.Bucket, key, err)
	}
	return data, nil
}
