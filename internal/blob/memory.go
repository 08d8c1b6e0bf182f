package blob

import (
	"context"
	"io"
	"sync"
)

type memoryObject struct {
	body        []byte
	contentType string
}

// Memory keeps uploads in process memory. Used for development and tests.
type Memory struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]memoryObject
}

func NewMemory(publicBaseURL string) *Memory {
	if publicBaseURL == "" {
		publicBaseURL = "memory://uploads"
	}
	return &Memory{baseURL: publicBaseURL, objects: make(map[string]memoryObject)}
}

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) Upload(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := ObjectKey(name)

	m.mu.Lock()
	m.objects[key] = memoryObject{body: body, contentType: contentType}
	m.mu.Unlock()

	return joinURL(m.baseURL, key), nil
}

// Object returns a stored upload by key.
func (m *Memory) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.body, obj.contentType, ok
}
