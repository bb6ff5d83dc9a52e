package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/tool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"
)

// remoteTool adapts a single MCP server tool to the text-query tool
// interface. The user query is passed as the "query" argument; servers
// whose tools expect richer arguments still receive the raw text.
type remoteTool struct {
	client     *Client
	serverName string
	def        *mcp.Tool
}

func remoteTools(client *Client) ([]tool.Tool, error) {
	var out []tool.Tool
	for _, serverName := range client.ServerNames() {
		defs, err := client.Tools(serverName)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get tools from server",
				goerr.V("server", serverName))
		}
		for _, def := range defs {
			out = append(out, &remoteTool{
				client:     client,
				serverName: serverName,
				def:        def,
			})
		}
	}
	return out, nil
}

func (x *remoteTool) Flags() []cli.Flag { return nil }

func (x *remoteTool) Init(ctx context.Context) (bool, error) {
	return x.client != nil, nil
}

func (x *remoteTool) Metadata() tool.Metadata {
	return tool.Metadata{
		Name:         x.serverName + "." + x.def.Name,
		Description:  x.def.Description,
		Category:     tool.CategoryResearch,
		Keywords:     strings.Fields(strings.ToLower(x.def.Name)),
		Reliability:  0.7,
		CostClass:    "medium",
		LatencyClass: "slow",
	}
}

func (x *remoteTool) Execute(ctx context.Context, query string) (string, error) {
	result, err := x.client.CallTool(ctx, x.serverName, x.def.Name, map[string]any{
		"query": query,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to call MCP tool")
	}
	if result.IsError {
		return "", goerr.New("MCP tool reported an error",
			goerr.V("server", x.serverName),
			goerr.V("tool", x.def.Name))
	}

	var parts []string
	for _, content := range result.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n"), nil
	}

	// Non-text content falls back to a JSON rendering
	raw, err := json.Marshal(result.Content)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal tool result")
	}
	return string(raw), nil
}
