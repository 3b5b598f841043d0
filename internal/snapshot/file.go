package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/port"
)

// FileStore keeps one JSON file per cart in dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (port.CartSnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) LoadSnapshot(_ context.Context, cartID string) (*domain.Cart, error) {
	path, err := s.path(cartID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	return decode(data)
}

// SaveSnapshot writes to a temp file in the same directory, syncs it and
// renames it over the previous snapshot.
func (s *FileStore) SaveSnapshot(_ context.Context, cartID string, cart domain.Cart) (err error) {
	path, err := s.path(cartID)
	if err != nil {
		return err
	}

	data, err := encode(cart)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+cartID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, os.Remove(tmp.Name()))
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("tmp.Write: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("tmp.Sync: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	return nil
}

func (s *FileStore) path(cartID string) (string, error) {
	if err := domain.ValidateCartID(cartID); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, cartID+".json"), nil
}
