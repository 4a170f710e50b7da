// Package blob is the object-storage boundary: path-addressed byte blobs
// under one root, laid out the way the catalogue bucket is.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotExist is returned when a requested object is absent.
var ErrNotExist = errors.New("object does not exist")

// Store reads and writes objects by slash-separated path.
type Store interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
	Copy(ctx context.Context, src, dst string) error
}

// ReadJSON reads an object and unmarshals it into v.
func ReadJSON(ctx context.Context, s Store, path string, v any) error {
	data, err := s.Read(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}

// WriteJSON marshals v with indentation and writes it as a JSON object.
func WriteJSON(ctx context.Context, s Store, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return s.Write(ctx, path, data, "application/json")
}
