package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadolammi/musecareer/internal/analysis"
	"github.com/muhammadolammi/musecareer/internal/events"
	"github.com/muhammadolammi/musecareer/internal/llm"
)

type recorder struct {
	mu      sync.Mutex
	updates []events.Update
}

func (r *recorder) Publish(_ context.Context, u events.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
	return nil
}

func (r *recorder) Close() error { return nil }

type fakeFiles map[string][]byte

func (f fakeFiles) Fetch(_ context.Context, uri string) ([]byte, error) {
	b, ok := f[uri]
	if !ok {
		return nil, errors.New("no such object")
	}
	return b, nil
}

func newPool(t *testing.T, reply string, files Fetcher, pub *recorder) *Pool {
	t.Helper()
	provider := llm.ProviderFunc(func(context.Context, string, llm.Options) (string, error) {
		return reply, nil
	})
	a := analysis.NewAnalyzer(provider, llm.DefaultOptions(), pub, nil)
	p, err := NewPool(Config{URL: "amqp://localhost", Queue: "analysis_jobs", Workers: 2}, a, files, pub, nil)
	require.NoError(t, err)
	return p
}

func TestHandleCompletesJob(t *testing.T) {
	pub := &recorder{}
	p := newPool(t, `{"summary":"ok","recommendations":[]}`, fakeFiles{"r2://cv.txt": []byte("Go developer")}, pub)

	err := p.Handle(context.Background(), []byte(`{"request_id":"job-1","file_uri":"r2://cv.txt","mime_type":"text/plain","interests":"backend"}`))
	require.NoError(t, err)

	require.Len(t, pub.updates, 2)
	assert.Equal(t, events.StatusCompleted, pub.updates[1].Status)
	assert.Equal(t, "job-1", pub.updates[1].RequestID)
	res, ok := pub.updates[1].Result.(*analysis.Result)
	require.True(t, ok)
	assert.Equal(t, "ok", res.Summary)
}

func TestHandleAssignsRequestID(t *testing.T) {
	pub := &recorder{}
	p := newPool(t, `{"summary":"ok"}`, fakeFiles{"r2://cv.txt": []byte("cv")}, pub)

	require.NoError(t, p.Handle(context.Background(), []byte(`{"file_uri":"r2://cv.txt"}`)))
	require.NotEmpty(t, pub.updates)
	assert.NotEmpty(t, pub.updates[0].RequestID)
}

func TestHandleFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		files   Fetcher
		reply   string
		wantErr string
	}{
		{name: "bad json", body: `{"request_id":`, files: fakeFiles{}, wantErr: "unexpected end of JSON input"},
		{name: "missing uri", body: `{"request_id":"j"}`, files: fakeFiles{}, wantErr: "no file_uri"},
		{name: "no store", body: `{"request_id":"j","file_uri":"r2://cv.txt"}`, files: nil, wantErr: "not configured"},
		{name: "download", body: `{"request_id":"j","file_uri":"r2://missing.txt"}`, files: fakeFiles{}, wantErr: "file download error"},
		{
			name:    "model prose",
			body:    `{"request_id":"j","file_uri":"r2://cv.txt","mime_type":"text/plain"}`,
			files:   fakeFiles{"r2://cv.txt": []byte("cv")},
			reply:   "no json here",
			wantErr: "no JSON object",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recorder{}
			p := newPool(t, tt.reply, tt.files, pub)

			err := p.Handle(context.Background(), []byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			require.NotEmpty(t, pub.updates)
			last := pub.updates[len(pub.updates)-1]
			assert.Equal(t, events.StatusFailed, last.Status)
			assert.NotEmpty(t, last.Error)
		})
	}
}

func TestNewPoolValidation(t *testing.T) {
	_, err := NewPool(Config{Queue: "q"}, nil, nil, nil, nil)
	assert.Error(t, err)
	_, err = NewPool(Config{URL: "amqp://localhost"}, nil, nil, nil, nil)
	assert.Error(t, err)

	p, err := NewPool(Config{URL: "amqp://localhost", Queue: "q"}, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, p.cfg.Workers)
}
