// Package mcp exposes the dependency graph tools over stdio JSON-RPC, one
// request per line, for MCP clients.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mwhitford/abacus/internal/config"
	"github.com/mwhitford/abacus/internal/graph"
)

// Server serves graph tool requests against an issue repository.
type Server struct {
	repo    graph.Repository
	maxSize int64
	logger  *slog.Logger
}

// New creates a Server over the given repository.
func New(repo graph.Repository, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	maxSize := cfg.MCP.MaxRequestBytes
	if maxSize <= 0 {
		maxSize = 1 << 20
	}
	return &Server{repo: repo, maxSize: maxSize, logger: logger}
}

// Serve reads line-delimited requests from r and writes responses to w until
// r is exhausted or the context is cancelled. A malformed line produces an
// error response and the loop continues; only transport failures stop it.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), int(s.maxSize))
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if encErr := encoder.Encode(Response{Error: fmt.Sprintf("decode error: %v", err)}); encErr != nil {
				return encErr
			}
			continue
		}

		resp := s.handleRequest(&req)
		resp.ID = req.ID
		if resp.Error != "" {
			s.logger.Warn("request failed", "method", req.Method, "error", resp.Error)
		} else {
			s.logger.Debug("request served", "method", req.Method)
		}
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}
