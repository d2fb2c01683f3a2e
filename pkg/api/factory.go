// Package api provides factory implementations for dependency injection
package api

import (
	"path/filepath"

	"github.com/ssargent/rkgkit/pkg/storage"
)

// DefaultStoreFactory is the default implementation of StoreFactory
type DefaultStoreFactory struct{}

// NewStoreFactory creates a new store factory
func NewStoreFactory() StoreFactory {
	return &DefaultStoreFactory{}
}

// OpenArchive opens the pebble ghost archive under dataDir
func (f *DefaultStoreFactory) OpenArchive(dataDir string) (ArchiveCloser, error) {
	archive, err := storage.NewGhostStore(filepath.Join(dataDir, "ghosts"))
	if err != nil {
		return nil, err
	}
	return archive, nil
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(archive GhostArchive, config ServerConfig) error {
	return StartServer(archive, config)
}
