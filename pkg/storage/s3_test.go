package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3Client struct {
	objects  map[string][]byte
	getErr   error
	headErr  error
	lastKey  string
	lastHead string
}

func (m *mockS3Client) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.lastKey = aws.ToString(in.Key)
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (m *mockS3Client) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	m.lastHead = aws.ToString(in.Bucket)
	if m.headErr != nil {
		return nil, m.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func TestS3Source_Fetch(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		objects map[string][]byte
		getErr  error
		wantKey string
		want    string
		wantErr error
	}{
		{
			name:    "no prefix",
			objects: map[string][]byte{"cardano-babbage.json": []byte(`{"definitions":{}}`)},
			wantKey: "cardano-babbage.json",
			want:    `{"definitions":{}}`,
		},
		{
			name:    "prefix",
			prefix:  "schemas/v1",
			objects: map[string][]byte{"schemas/v1/cardano-babbage.json": []byte(`{}`)},
			wantKey: "schemas/v1/cardano-babbage.json",
			want:    `{}`,
		},
		{
			name:    "missing object",
			objects: map[string][]byte{},
			wantKey: "cardano-babbage.json",
			wantErr: fs.ErrNotExist,
		},
		{
			name:    "client failure",
			getErr:  errors.New("connection reset"),
			wantKey: "cardano-babbage.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockS3Client{objects: tt.objects, getErr: tt.getErr}
			src := newS3Source(client, "ledger", tt.prefix)

			data, err := src.Fetch(context.Background(), "cardano-babbage.json")
			assert.Equal(t, tt.wantKey, client.lastKey)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.getErr != nil:
				assert.ErrorContains(t, err, "connection reset")
				assert.NotErrorIs(t, err, fs.ErrNotExist)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, string(data))
			}
		})
	}
}

func TestS3Source_HealthCheck(t *testing.T) {
	client := &mockS3Client{}
	src := newS3Source(client, "ledger", "")
	assert.Equal(t, TypeS3, src.Name())

	require.NoError(t, src.HealthCheck(context.Background()))
	assert.Equal(t, "ledger", client.lastHead)

	client.headErr = errors.New("forbidden")
	assert.ErrorContains(t, src.HealthCheck(context.Background()), "s3 health check failed")
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, isNotFoundError(&types.NoSuchKey{}))
	assert.True(t, isNotFoundError(&types.NotFound{}))
	assert.False(t, isNotFoundError(errors.New("NoSuchKey")))
	assert.False(t, isNotFoundError(nil))
}
