package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ChannelSync/internal/ports"
)

// DefaultBucket receives article media when no bucket is configured.
const DefaultBucket = "article-media"

// BucketStore uploads objects through a Supabase-compatible storage REST API.
type BucketStore struct {
	client     *http.Client
	baseURL    string
	serviceKey string
	bucket     string
}

var _ ports.ObjectStore = (*BucketStore)(nil)

// NewBucketStore wires the storage endpoint; objects are written with upsert semantics.
func NewBucketStore(client *http.Client, baseURL, serviceKey, bucket string) *BucketStore {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &BucketStore{
		client:     client,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
	}
}

// Upload stores data under name and returns its public URL.
func (b *BucketStore) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	objectPath := url.PathEscape(b.bucket) + "/" + escapeObjectName(name)
	endpoint := b.baseURL + "/storage/v1/object/" + objectPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.serviceKey)
	req.Header.Set("apikey", b.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload %s: storage returned %s: %s", name, resp.Status, strings.TrimSpace(string(body)))
	}

	return b.PublicURL(name), nil
}

// PublicURL is where a stored object can be fetched without credentials.
func (b *BucketStore) PublicURL(name string) string {
	return b.baseURL + "/storage/v1/object/public/" + url.PathEscape(b.bucket) + "/" + escapeObjectName(name)
}

func escapeObjectName(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
