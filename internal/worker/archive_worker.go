package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

// ObjectPutter is the part of the S3 client the archiver uses
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes one JSON object per purged batch. Only row metadata is
// archived; the token digest is never serialized.
type S3Archiver struct {
	client ObjectPutter
	config *config.S3Config
	logger *logger.Logger
	now    func() time.Time
}

func NewS3Archiver(client ObjectPutter, config *config.S3Config, logger *logger.Logger) *S3Archiver {
	return &S3Archiver{
		client: client,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

type refreshTokenArchive struct {
	Cutoff     time.Time             `json:"cutoff"`
	ArchivedAt time.Time             `json:"archived_at"`
	Count      int                   `json:"count"`
	Tokens     []domain.RefreshToken `json:"tokens"`
}

func (a *S3Archiver) objectKey(cutoff time.Time) string {
	return path.Join(
		a.config.Prefix,
		cutoff.UTC().Format("2006/01/02"),
		fmt.Sprintf("refresh_tokens_%s_%s.json", cutoff.UTC().Format("20060102T150405Z"), uuid.NewString()),
	)
}

func (a *S3Archiver) Archive(ctx context.Context, tokens []domain.RefreshToken, cutoff time.Time) error {
	if len(tokens) == 0 {
		return nil
	}

	archivedAt := a.now()
	data, err := json.Marshal(refreshTokenArchive{
		Cutoff:     cutoff,
		ArchivedAt: archivedAt,
		Count:      len(tokens),
		Tokens:     tokens,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal refresh tokens: %w", err)
	}

	key := a.objectKey(cutoff)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"archived-at": archivedAt.Format(time.RFC3339),
			"cutoff":      cutoff.Format(time.RFC3339),
			"token-count": strconv.Itoa(len(tokens)),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive to S3: %w", err)
	}

	a.logger.Infof("Archived %d refresh tokens to s3://%s/%s", len(tokens), a.config.BucketName, key)
	return nil
}
