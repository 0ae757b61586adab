// Command antlrlensd hosts the antlrlens grammar analysis engine over
// the MCP stdio transport (spec.md §6 "CLI surface"). It takes no
// arguments, reads an optional YAML config file from
// ANTLRLENS_CONFIG (or ./antlrlens.yaml if unset), and runs until the
// transport loop exits.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/odvcencio/antlrlens/engine"
	"github.com/odvcencio/antlrlens/internal/config"
	"github.com/odvcencio/antlrlens/internal/debugserver"
	"github.com/odvcencio/antlrlens/internal/mcptools"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	instanceID := uuid.New().String()
	log = log.With("instance", instanceID)

	cfgPath := os.Getenv("ANTLRLENS_CONFIG")
	if cfgPath == "" {
		cfgPath = "antlrlens.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Error("load config", "error", err)
		return 1
	}
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		return 1
	}

	eng := engine.New(cfg)
	registry := mcptools.NewRegistry(eng)

	srv := server.NewMCPServer("antlrlens", "0.1.0")
	for _, t := range registry.Tools() {
		registerTool(srv, t, log)
	}

	if addr := os.Getenv("ANTLRLENS_DEBUG_ADDR"); addr != "" {
		dbg := debugserver.New(log)
		go func() {
			log.Info("debug server listening", "addr", addr)
			if err := http.ListenAndServe(addr, dbg); err != nil {
				log.Error("debug server exited", "error", err)
			}
		}()
	}

	log.Info("antlrlensd starting", "tools", len(registry.Tools()))
	if err := server.ServeStdio(srv); err != nil {
		log.Error("transport loop exited with error", "error", err)
		return 1
	}
	return 0
}

// registerTool adapts one mcptools.ToolDef (raw-JSON handler) to the
// mcp-go server's typed CallToolRequest/CallToolResult API.
func registerTool(srv *server.MCPServer, t mcptools.ToolDef, log *slog.Logger) {
	tool := mcp.NewToolWithRawSchema(t.Name, t.Description, t.InputSchema)
	srv.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal arguments: %v", err)), nil
		}
		result, err := t.Handler(params)
		if err != nil {
			log.Warn("tool call failed", "tool", t.Name, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	})
}
