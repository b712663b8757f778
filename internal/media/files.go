package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore holds uploaded import files and serves them back to the
// engine: exactly one fetch per processing run.
type FileStore interface {
	// Save persists an uploaded file and returns its location.
	Save(name string, r io.Reader) (location string, size int64, err error)
	// Fetch returns the raw bytes for a location, which may be a saved
	// upload or an external http(s) URL.
	Fetch(ctx context.Context, location string) ([]byte, error)
	// Remove deletes a saved upload. Missing files are not an error.
	Remove(location string) error
}

type localFileStore struct {
	dir    string
	client *http.Client
}

// NewLocalFileStore stores uploads under dir.
func NewLocalFileStore(dir string, client *http.Client) (FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &localFileStore{dir: dir, client: client}, nil
}

func (s *localFileStore) Save(name string, r io.Reader) (string, int64, error) {
	location := filepath.Join(s.dir, uuid.NewString()+filepath.Ext(name))
	f, err := os.Create(location)
	if err != nil {
		return "", 0, fmt.Errorf("failed to store upload: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(location)
		return "", 0, fmt.Errorf("failed to store upload: %w", err)
	}
	return location, size, nil
}

func (s *localFileStore) Fetch(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", location, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch %s: status %d", location, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return data, nil
}

func (s *localFileStore) Remove(location string) error {
	err := os.Remove(location)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
