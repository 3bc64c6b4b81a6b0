package mcp

import (
	"context"
	"errors"
	"io"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/codec"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/definitions"
)

// Server runs the JSON-RPC 2.0 loop over a line-delimited transport.
// Requests are handled strictly in arrival order.
type Server struct {
	transport *Transport
	registry  *Registry
}

func NewServer(r io.Reader, w io.Writer, registry *Registry) *Server {
	return &Server{
		transport: NewTransport(r, w),
		registry:  registry,
	}
}

// Run reads requests until the input closes. A malformed line gets a
// parse error response and the loop keeps going; only EOF or a broken
// output pipe ends the server.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Str("server", ServerName).Str("version", ServerVersion).Msg("listening on stdio")

	for {
		line, err := s.transport.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Info().Msg("input closed, shutting down")
				return nil
			}
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		var msg Message
		if err := sonic.Unmarshal([]byte(line), &msg); err != nil {
			log.Warn().Err(err).Msg("unparsable request")
			if werr := s.transport.WriteError(nil, CodeParseError, "Parse error", nil); werr != nil {
				return werr
			}
			continue
		}

		if err := s.handle(ctx, msg); err != nil {
			return err
		}
	}
}

func (s *Server) handle(ctx context.Context, msg Message) error {
	log.Debug().Str("method", msg.Method).Interface("id", msg.ID).Msg("request")

	switch msg.Method {
	case "initialize":
		return s.transport.WriteResponse(msg.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    Capabilities{Tools: map[string]any{"listChanged": true}},
			ServerInfo:      ServerInfo{Name: ServerName, Version: ServerVersion},
		})

	case "notifications/initialized":
		// Notification, no response.
		return nil

	case "tools/list":
		return s.transport.WriteResponse(msg.ID, ToolsListResult{Tools: s.registry.Tools()})

	case "tools/call":
		return s.handleToolsCall(ctx, msg)

	default:
		if msg.ID == nil {
			// Unknown notification, ignore.
			return nil
		}
		return s.transport.WriteError(msg.ID, CodeMethodNotFound, "Method not found: "+msg.Method, nil)
	}
}

func (s *Server) handleToolsCall(ctx context.Context, msg Message) error {
	var params ToolsCallParams
	if err := sonic.Unmarshal(msg.Params, &params); err != nil {
		typed := codec.MapError(definitions.Validationf("invalid tools/call params: %v", err))
		return s.transport.WriteError(msg.ID, typed.Code(), typed.Message, nil)
	}

	content, err := s.registry.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		typed := codec.MapError(err)
		log.Warn().Str("tool", params.Name).Int("code", typed.Code()).Err(typed).Msg("tool call failed")
		return s.transport.WriteError(msg.ID, typed.Code(), typed.Message, nil)
	}

	return s.transport.WriteResponse(msg.ID, ToolsCallResult{Content: content})
}
