package supabase

import (
	"bytes"
	"context"
	"net/http"

	"github.com/goccy/go-json"
)

// Storage adapts the Supabase Storage API to store.BlobStore.
type Storage struct {
	c *Client
}

func (c *Client) Storage() *Storage {
	return &Storage{c: c}
}

func (s *Storage) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	header := http.Header{"Content-Type": {contentType}}
	req := bytes.Clone(data)
	if req == nil {
		req = []byte{}
	}
	resp, err := s.c.do(ctx, http.MethodPost, "/storage/v1/object/"+bucket+"/"+key, header, req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (s *Storage) Remove(ctx context.Context, bucket string, keys []string) error {
	body, err := json.Marshal(map[string][]string{"prefixes": keys})
	if err != nil {
		return err
	}
	resp, err := s.c.do(ctx, http.MethodDelete, "/storage/v1/object/"+bucket, nil, body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (s *Storage) URL(bucket, key string) string {
	return s.c.baseURL + "/storage/v1/object/public/" + bucket + "/" + key
}
