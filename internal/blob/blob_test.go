package blob

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildsafe/safety-backend/internal/config"
)

func TestObjectKey(t *testing.T) {
	tests := map[string]string{
		"signature.png":         "signature.png",
		"../../etc/passwd":      "passwd",
		`C:\photos\site 1.jpg`:  "site_1.jpg",
		"  ":                    "upload",
		"scaffold (north).jpeg": "scaffold_north_.jpeg",
	}
	for in, want := range tests {
		key := ObjectKey(in)
		parts := strings.SplitN(key, "/", 2)
		require.Len(t, parts, 2, in)
		assert.Len(t, parts[0], 36, in)
		assert.Equal(t, want, parts[1], in)
	}
	assert.NotEqual(t, ObjectKey("a.png"), ObjectKey("a.png"))
}

func TestMemoryUpload(t *testing.T) {
	m := NewMemory("https://cdn.example/uploads/")

	url, err := m.Upload(context.Background(), "sig.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://cdn.example/uploads/"))

	key := strings.TrimPrefix(url, "https://cdn.example/uploads/")
	body, ct, ok := m.Object(key)
	require.True(t, ok)
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, "image/png", ct)
}

func TestOpenSelectsDriver(t *testing.T) {
	s, err := Open(context.Background(), config.BlobConfig{})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, s.Driver())

	_, err = Open(context.Background(), config.BlobConfig{Driver: "ftp"})
	assert.Error(t, err)

	_, err = Open(context.Background(), config.BlobConfig{Driver: "s3"})
	assert.Error(t, err, "bucket is required")
}

// recordingTransport captures PUT requests the S3 client sends.
type recordingTransport struct {
	mu   sync.Mutex
	puts map[string][]byte
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	rt.puts[req.URL.Path] = body
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}}, nil
}

func TestS3Upload(t *testing.T) {
	rt := &recordingTransport{puts: map[string][]byte{}}
	store, err := NewS3(context.Background(), S3Config{
		Bucket:          "site-photos",
		Region:          "us-east-1",
		Endpoint:        "https://mock.s3.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		httpClient:      &http.Client{Transport: rt},
	})
	require.NoError(t, err)
	assert.Equal(t, DriverS3, store.Driver())

	url, err := store.Upload(context.Background(), "harness.jpg", strings.NewReader("jpeg-data"), "image/jpeg")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://mock.s3.local/site-photos/"), url)
	assert.True(t, strings.HasSuffix(url, "/harness.jpg"))

	path := strings.TrimPrefix(url, "https://mock.s3.local")
	body, ok := rt.puts[path]
	require.True(t, ok, "PUT sent to %s", path)
	assert.Contains(t, string(body), "jpeg-data")
}

func TestPublicBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example", publicBase(S3Config{Bucket: "b", PublicBaseURL: "https://cdn.example"}))
	assert.Equal(t, "http://minio:9000/b", publicBase(S3Config{Bucket: "b", Endpoint: "http://minio:9000", PathStyle: true}))
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", publicBase(S3Config{Bucket: "b", Region: "eu-west-1"}))
}
