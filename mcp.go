package pagekit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/pagekit/idgen"
	"github.com/hazyhaar/pagekit/kit"
)

// RegisterMCP registers the library's keyword surface on an MCP
// server: list keywords, run one, inspect the loaded page objects.
func (lib *Library) RegisterMCP(srv *mcp.Server) {
	lib.registerKeywordsTool(srv)
	lib.registerRunTool(srv)
	lib.registerObjectsTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func mcpEnrich(ctx context.Context) context.Context {
	return kit.WithTransport(ctx, "mcp")
}

// --- page_keywords ---

type keywordsReq struct {
	Page string `json:"page"`
}

func (lib *Library) registerKeywordsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "page_keywords",
		Description: "List the keywords published by the loaded page objects, optionally filtered to one page.",
		InputSchema: inputSchema(map[string]any{
			"page": map[string]any{"type": "string", "description": "Page display name to filter by"},
		}, nil),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*keywordsReq)
		if r.Page == "" {
			return map[string]any{"keywords": lib.KeywordNames()}, nil
		}
		for _, p := range lib.Pages() {
			if p.Name() == r.Page {
				return map[string]any{"keywords": p.KeywordNames()}, nil
			}
		}
		return nil, fmt.Errorf("pagekit: no page object named %q", r.Page)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r keywordsReq
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- page_run ---

type runReq struct {
	Keyword string   `json:"keyword"`
	Args    []string `json:"args"`
}

func (lib *Library) registerRunTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "page_run",
		Description: "Run a page-object keyword by name with string arguments.",
		InputSchema: inputSchema(map[string]any{
			"keyword": map[string]any{"type": "string", "description": "Published keyword name"},
			"args": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Keyword arguments",
			},
		}, []string{"keyword"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*runReq)
		ret, err := lib.RunKeyword(ctx, r.Keyword, r.Args)
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "PASS", "return": ret}, nil
	}
	// Invocations record trace entries, so runs arriving without a
	// trace ID get one minted here.
	endpoint = kit.EnsureTraceID(idgen.Prefixed("trc_", idgen.Default))(endpoint)

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r runReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.Keyword == "" {
			return nil, fmt.Errorf("keyword is required")
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: mcpEnrich}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- page_objects ---

func (lib *Library) registerObjectsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "page_objects",
		Description: "List the loaded page objects with their address attributes.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	type pageInfo struct {
		Name        string `json:"name"`
		URI         string `json:"uri,omitempty"`
		URITemplate string `json:"uri_template,omitempty"`
		Keywords    int    `json:"keywords"`
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		pages := lib.Pages()
		infos := make([]pageInfo, 0, len(pages))
		for _, p := range pages {
			infos = append(infos, pageInfo{
				Name:        p.Name(),
				URI:         p.URI(),
				URITemplate: p.URITemplate(),
				Keywords:    len(p.KeywordNames()),
			})
		}
		return map[string]any{"pages": infos}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
