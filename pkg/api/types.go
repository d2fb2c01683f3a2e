package api

import (
	"github.com/ssargent/rkgkit/pkg/rkg"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
	Debug  bool // Log every request
}

// GhostResponse describes an archived ghost
type GhostResponse struct {
	ID     string     `json:"id"`
	Size   int        `json:"size"`
	Frames int        `json:"frames"`
	Header rkg.Header `json:"header"`
}

// DecodeResponse is returned when a ghost file is decoded
type DecodeResponse struct {
	Header    rkg.Header `json:"header"`
	Checksum  string     `json:"checksum"`
	Frames    int        `json:"frames"`
	Truncated bool       `json:"truncated"`
	CSV       string     `json:"csv"`
}
