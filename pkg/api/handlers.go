package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/rkgkit/pkg/frames"
	"github.com/ssargent/rkgkit/pkg/rkg"
)

// maxFrameBody bounds the size of an uploaded frame file
const maxFrameBody = 1 << 20

// Server holds the API server state
type Server struct {
	archive GhostArchive
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(archive GhostArchive, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		archive: archive,
		config:  config,
		metrics: metrics,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleCreateGhost godoc
//
//	@Summary		Create a ghost
//	@Description	Encode a frame file into a ghost and archive it
//	@Tags			ghosts
//	@Accept			text/csv
//	@Produce		json
//	@Param			track		query		int		false	"Track id"
//	@Param			vehicle		query		int		false	"Vehicle id"
//	@Param			character	query		int		false	"Character id"
//	@Param			drift		query		int		false	"Drift id"
//	@Success		200			{object}	GhostResponse
//	@Failure		400			{object}	APIResponse
//	@Failure		500			{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/ghosts [post]
func (s *Server) handleCreateGhost(w http.ResponseWriter, r *http.Request) {
	meta, err := metadataFromQuery(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	seq, err := frames.ReadCSV(http.MaxBytesReader(w, r.Body, maxFrameBody))
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	file, err := rkg.CreateFile(seq, meta)
	s.recordCodec("encode", seq.Len(), err == nil, time.Since(start))
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	id, err := s.archive.Create(file)
	s.recordArchive("create", err == nil)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	parsed, err := rkg.ParseFile(file)
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.metrics != nil {
		h := parsed.Header
		s.metrics.RecordTuples(h.FaceTuples, h.DirectionTuples, h.TrickTuples)
	}

	sendSuccess(w, GhostResponse{
		ID:     id.String(),
		Size:   len(file),
		Frames: seq.Len(),
		Header: parsed.Header,
	})
}

// handleListGhosts godoc
//
//	@Summary		List ghosts
//	@Description	List the ids of every archived ghost
//	@Tags			ghosts
//	@Produce		json
//	@Success		200	{object}	[]string
//	@Failure		500	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/ghosts [get]
func (s *Server) handleListGhosts(w http.ResponseWriter, r *http.Request) {
	ids, err := s.archive.List()
	s.recordArchive("list", err == nil)
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.metrics != nil {
		s.metrics.SetGhostsArchived(len(ids))
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	sendSuccess(w, out)
}

// handleGetGhost godoc
//
//	@Summary		Download a ghost
//	@Description	Return the raw ghost file
//	@Tags			ghosts
//	@Produce		octet-stream
//	@Param			id	path		string	true	"Ghost id"
//	@Success		200	{file}		binary
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/ghosts/{id} [get]
func (s *Server) handleGetGhost(w http.ResponseWriter, r *http.Request) {
	id, file, ok := s.readGhost(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id.String()+".rkg"))
	w.Header().Set("Content-Length", strconv.Itoa(len(file)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file)
}

// handleGetGhostFrames godoc
//
//	@Summary		Decode an archived ghost
//	@Description	Return the frame file recovered from an archived ghost
//	@Tags			ghosts
//	@Produce		text/csv
//	@Param			id	path		string	true	"Ghost id"
//	@Success		200	{string}	string
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/ghosts/{id}/frames [get]
func (s *Server) handleGetGhostFrames(w http.ResponseWriter, r *http.Request) {
	_, file, ok := s.readGhost(w, r)
	if !ok {
		return
	}

	result, err := s.decode(file)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	if result.Truncated {
		w.Header().Set("X-Ghost-Truncated", "true")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result.CSV)
}

// handleDeleteGhost godoc
//
//	@Summary		Delete a ghost
//	@Description	Remove a ghost from the archive
//	@Tags			ghosts
//	@Produce		json
//	@Param			id	path		string	true	"Ghost id"
//	@Success		200	{object}	map[string]string
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/ghosts/{id} [delete]
func (s *Server) handleDeleteGhost(w http.ResponseWriter, r *http.Request) {
	id, ok := ghostID(w, r)
	if !ok {
		return
	}

	err := s.archive.Delete(id)
	s.recordArchive("delete", err == nil)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	sendSuccess(w, map[string]string{"status": "deleted", "id": id.String()})
}

// handleDecode godoc
//
//	@Summary		Decode a ghost file
//	@Description	Validate an uploaded ghost file and return its header and frames
//	@Tags			codec
//	@Accept			octet-stream
//	@Produce		json
//	@Success		200	{object}	DecodeResponse
//	@Failure		400	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/decode [post]
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, rkg.FileSize+1))
	if err != nil {
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	result, err := s.decode(data)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	sendSuccess(w, result)
}

// decode parses a ghost file and renders its frames. A truncated input
// section is reported on the result rather than as an error.
func (s *Server) decode(data []byte) (*DecodeResponse, error) {
	start := time.Now()
	file, err := rkg.ParseFile(data)
	if err != nil {
		s.recordCodec("decode", 0, false, time.Since(start))
		return nil, err
	}

	inputs, err := file.Frames()
	truncated := errors.Is(err, rkg.ErrTruncatedStream)
	if err != nil && !truncated {
		s.recordCodec("decode", 0, false, time.Since(start))
		return nil, err
	}
	s.recordCodec("decode", len(inputs), true, time.Since(start))

	var buf bytes.Buffer
	if err := frames.NewSequence(inputs).WriteCSV(&buf); err != nil {
		return nil, err
	}

	return &DecodeResponse{
		Header:    file.Header,
		Checksum:  fmt.Sprintf("%08x", file.Checksum()),
		Frames:    len(inputs),
		Truncated: truncated,
		CSV:       buf.String(),
	}, nil
}

// readGhost loads the ghost named by the id URL parameter, writing an
// error response when it cannot.
func (s *Server) readGhost(w http.ResponseWriter, r *http.Request) (*ksuid.KSUID, []byte, bool) {
	id, ok := ghostID(w, r)
	if !ok {
		return nil, nil, false
	}

	file, err := s.archive.Read(id)
	s.recordArchive("read", err == nil)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return nil, nil, false
	}
	return id, file, true
}

func ghostID(w http.ResponseWriter, r *http.Request) (*ksuid.KSUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		sendError(w, "Ghost id is required", http.StatusBadRequest)
		return nil, false
	}
	id, err := ksuid.Parse(raw)
	if err != nil {
		sendError(w, fmt.Sprintf("Invalid ghost id: %v", err), http.StatusBadRequest)
		return nil, false
	}
	return &id, true
}

// metadataFromQuery reads the race metadata from query parameters.
// Missing parameters default to zero.
func metadataFromQuery(r *http.Request) (rkg.Metadata, error) {
	var meta rkg.Metadata
	params := []struct {
		name string
		dst  *int
	}{
		{"track", &meta.TrackID},
		{"vehicle", &meta.VehicleID},
		{"character", &meta.CharacterID},
		{"drift", &meta.DriftID},
	}

	q := r.URL.Query()
	for _, p := range params {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return meta, fmt.Errorf("invalid %s: %q", p.name, raw)
		}
		*p.dst = v
	}
	return meta, nil
}

func (s *Server) recordCodec(operation string, count int, success bool, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordCodecOperation(operation, count, success, d)
	}
}

func (s *Server) recordArchive(operation string, success bool) {
	if s.metrics != nil {
		s.metrics.RecordArchiveOperation(operation, success)
	}
}
