package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChannelSync/internal/domain"
)

type memObjects struct {
	mu      sync.Mutex
	objects map[string]string
	fail    bool
}

func (m *memObjects) Upload(_ context.Context, name, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", errors.New("storage offline")
	}
	if m.objects == nil {
		m.objects = map[string]string{}
	}
	m.objects[name] = contentType + ":" + string(data)
	return "https://cdn.test/" + name, nil
}

func newMediaServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("photo-a"))
		case "/b.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("photo-b"))
		case "/v.mp4":
			w.Header().Set("Content-Type", "video/mp4")
			_, _ = w.Write([]byte("video"))
		case "/huge.mp4":
			w.Header().Set("Content-Type", "video/mp4")
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestResolveUploadsFirstPhotoAndVideo(t *testing.T) {
	server := newMediaServer(t)
	defer server.Close()

	store := &memObjects{}
	r := NewResolver(server.Client(), store, nil)

	refs, err := r.Resolve(context.Background(), "chan/10", []domain.Media{
		{Kind: domain.MediaPhoto, URL: server.URL + "/a.jpg"},
		{Kind: domain.MediaPhoto, URL: server.URL + "/b.png"},
		{Kind: domain.MediaVideo, URL: server.URL + "/v.mp4"},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.test/chan_10_photo.jpg", refs.ImageURL)
	assert.Equal(t, "https://cdn.test/chan_10_video.mp4", refs.VideoURL)
	assert.Len(t, store.objects, 2)
	assert.Equal(t, "image/jpeg:photo-a", store.objects["chan_10_photo.jpg"])
}

func TestResolveFallsBackToNextCandidate(t *testing.T) {
	server := newMediaServer(t)
	defer server.Close()

	store := &memObjects{}
	r := NewResolver(server.Client(), store, nil)

	refs, err := r.Resolve(context.Background(), "chan/11", []domain.Media{
		{Kind: domain.MediaPhoto, URL: server.URL + "/missing.jpg"},
		{Kind: domain.MediaPhoto, URL: server.URL + "/b.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/chan_11_photo.png", refs.ImageURL)
	assert.Empty(t, refs.VideoURL)
}

func TestResolveSkipsOversizedMedia(t *testing.T) {
	server := newMediaServer(t)
	defer server.Close()

	r := NewResolver(server.Client(), &memObjects{}, nil)

	_, err := r.Resolve(context.Background(), "chan/12", []domain.Media{
		{Kind: domain.MediaVideo, URL: server.URL + "/v.mp4", Size: MaxVideoBytes + 1},
	})
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestResolveReportsUploadFailure(t *testing.T) {
	server := newMediaServer(t)
	defer server.Close()

	r := NewResolver(server.Client(), &memObjects{fail: true}, nil)

	refs, err := r.Resolve(context.Background(), "chan/13", []domain.Media{
		{Kind: domain.MediaPhoto, URL: server.URL + "/a.jpg"},
	})
	require.Error(t, err)
	assert.True(t, refs.Empty())
	assert.Contains(t, err.Error(), "storage offline")
}

func TestResolveWithoutCandidates(t *testing.T) {
	refs, err := NewResolver(nil, &memObjects{}, nil).Resolve(context.Background(), "chan/1", nil)
	require.NoError(t, err)
	assert.True(t, refs.Empty())
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "observer_5_120_photo.jpg", ObjectName("observer_5/120", domain.MediaPhoto, "image/jpeg"))
	assert.Equal(t, "observer_5_120_video.mp4", ObjectName("observer_5/120", domain.MediaVideo, ""))
	assert.Equal(t, "a_1_photo.webp", ObjectName("a/1", domain.MediaPhoto, "image/webp"))
}
