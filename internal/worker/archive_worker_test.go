package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(params.Body)
	f.inputs = append(f.inputs, params)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func newTestArchiver(putter *fakePutter) *S3Archiver {
	return NewS3Archiver(putter, &config.S3Config{BucketName: "archives", Prefix: "refresh-tokens"}, logger.NewNop())
}

func TestS3Archiver_WritesBatchWithoutDigests(t *testing.T) {
	putter := &fakePutter{}
	archiver := newTestArchiver(putter)
	cutoff := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	tokens := []domain.RefreshToken{
		{ID: "a", UserID: "user-1", Token: "digest-a", ValidUntil: cutoff.Add(-time.Hour)},
		{ID: "b", UserID: "user-2", Token: "digest-b", ValidUntil: cutoff.Add(-time.Minute)},
	}

	require.NoError(t, archiver.Archive(context.Background(), tokens, cutoff))

	require.Len(t, putter.inputs, 1)
	input := putter.inputs[0]
	assert.Equal(t, "archives", aws.ToString(input.Bucket))
	assert.True(t, strings.HasPrefix(aws.ToString(input.Key), "refresh-tokens/2025/06/01/refresh_tokens_20250601T123000Z_"))
	assert.Equal(t, "2", input.Metadata["token-count"])

	var archive refreshTokenArchive
	require.NoError(t, json.Unmarshal([]byte(putter.bodies[0]), &archive))
	assert.Equal(t, 2, archive.Count)
	assert.Equal(t, "user-2", archive.Tokens[1].UserID)
	assert.NotContains(t, putter.bodies[0], "digest-a")
}

func TestS3Archiver_EmptyBatch(t *testing.T) {
	putter := &fakePutter{}

	require.NoError(t, newTestArchiver(putter).Archive(context.Background(), nil, time.Now()))
	assert.Empty(t, putter.inputs)
}

func TestS3Archiver_UploadFailure(t *testing.T) {
	putter := &fakePutter{err: errors.New("access denied")}

	err := newTestArchiver(putter).Archive(context.Background(), []domain.RefreshToken{{ID: "a"}}, time.Now())

	assert.ErrorContains(t, err, "failed to upload archive to S3")
}
