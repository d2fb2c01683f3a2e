// Package api provides interfaces for dependency injection
package api

import (
	"github.com/segmentio/ksuid"
)

// GhostArchive defines the ghost storage operations used by the API
type GhostArchive interface {
	Create(file []byte) (*ksuid.KSUID, error)
	Read(id *ksuid.KSUID) ([]byte, error)
	Delete(id *ksuid.KSUID) error
	List() ([]ksuid.KSUID, error)
}

// ArchiveCloser is a GhostArchive that owns resources
type ArchiveCloser interface {
	GhostArchive
	Close() error
}

// StoreFactory opens ghost archives
type StoreFactory interface {
	// OpenArchive opens the archive kept under dataDir
	OpenArchive(dataDir string) (ArchiveCloser, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer starts the API server with the given configuration
	StartServer(archive GhostArchive, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
