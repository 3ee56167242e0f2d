package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	failures int
	calls    int
	body     string
	gotInput *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls++
	f.gotInput = in
	if f.calls <= f.failures {
		return nil, errors.New("connection reset")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		raw        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{"s3://cvs/uploads/jane.pdf", "cvs", "uploads/jane.pdf", false},
		{"r2://uploads/jane.pdf", "default", "uploads/jane.pdf", false},
		{"r2:///uploads/jane.pdf", "default", "uploads/jane.pdf", false},
		{"s3://cvs", "", "", true},
		{"https://example.com/jane.pdf", "", "", true},
		{"jane.pdf", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			bucket, key, err := ParseURI(tt.raw, "default")
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	fake := &fakeS3{failures: 1, body: "cv bytes"}
	s := &Store{client: fake, defaultBucket: "cvs", attempts: 3}

	got, err := s.Fetch(context.Background(), "r2://jane.txt")
	require.NoError(t, err)
	assert.Equal(t, "cv bytes", string(got))
	assert.Equal(t, 2, fake.calls)
	assert.Equal(t, "cvs", aws.ToString(fake.gotInput.Bucket))
	assert.Equal(t, "jane.txt", aws.ToString(fake.gotInput.Key))
}

func TestFetchGivesUp(t *testing.T) {
	fake := &fakeS3{failures: 10}
	s := &Store{client: fake, defaultBucket: "cvs", attempts: 2}

	_, err := s.Fetch(context.Background(), "s3://cvs/jane.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, 2, fake.calls)
}

func TestFetchRejectsBadURIWithoutCalling(t *testing.T) {
	fake := &fakeS3{}
	s := &Store{client: fake, attempts: 3}
	_, err := s.Fetch(context.Background(), "r2://jane.txt")
	require.ErrorIs(t, err, ErrInvalidURI)
	assert.Zero(t, fake.calls)
}

func TestR2Endpoint(t *testing.T) {
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com", R2Config{AccountID: "acc"}.endpoint())
	assert.Equal(t, "http://localhost:9000", R2Config{AccountID: "acc", Endpoint: "http://localhost:9000"}.endpoint())
	assert.Equal(t, "", R2Config{}.endpoint())
}
