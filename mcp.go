package domsnap

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domsnap/dom"
	"github.com/hazyhaar/domsnap/kit"
)

// RegisterMCP registers domsnap tools on an MCP server.
func (s *Snapshotter) RegisterMCP(srv *mcp.Server) {
	s.registerCaptureTool(srv)
	s.registerClearOverlayTool(srv)
	s.registerHistoryTool(srv)
	s.registerGetTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	sch := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sch["required"] = required
	}
	return sch
}

// --- capture ---

type captureResponse struct {
	Snapshot    *dom.Snapshot  `json:"snapshot"`
	Interactive map[int]string `json:"interactive"` // index -> tag summary
}

func (s *Snapshotter) registerCaptureTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domsnap_capture",
		Description: "Capture an actionable snapshot of a page: a node tree with dense highlight indices over clickable elements, with viewport and page coordinates.",
		InputSchema: inputSchema(map[string]any{
			"url":                map[string]any{"type": "string", "description": "Page URL to capture"},
			"page_id":            map[string]any{"type": "string", "description": "Stable tab identifier for reuse across captures"},
			"highlight_elements": map[string]any{"type": "boolean", "description": "Draw numbered boxes over interactive elements (default from config)"},
			"focus_index":        map[string]any{"type": "integer", "description": "Highlight only this index; -1 highlights all"},
			"viewport_expansion": map[string]any{"type": "integer", "description": "Pixels beyond the viewport to treat as visible; -1 disables occlusion checks"},
			"markdown":           map[string]any{"type": "boolean", "description": "Include a markdown digest of the page"},
		}, []string{"url"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*CaptureRequest)
		snap, err := s.Capture(ctx, *r)
		if err != nil {
			return nil, err
		}
		sel := dom.BuildSelectorMap(snap.Tree)
		interactive := make(map[int]string, len(sel))
		for idx, el := range sel {
			interactive[idx] = el.TagName
		}
		return captureResponse{Snapshot: snap, Interactive: interactive}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r CaptureRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- clear_overlay ---

type clearOverlayRequest struct {
	PageID string `json:"page_id"`
}

func (s *Snapshotter) registerClearOverlayTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domsnap_clear_overlay",
		Description: "Remove the highlight boxes from a page's tab.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Tab identifier used at capture time"},
		}, []string{"page_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*clearOverlayRequest)
		if err := s.ClearOverlay(r.PageID); err != nil {
			return nil, err
		}
		return map[string]string{"status": "cleared", "page_id": r.PageID}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r clearOverlayRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- history ---

type historyRequest struct {
	PageURL string `json:"page_url,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

func (s *Snapshotter) registerHistoryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domsnap_history",
		Description: "List stored snapshots, newest first. Returns metadata only; use domsnap_get for the tree.",
		InputSchema: inputSchema(map[string]any{
			"page_url": map[string]any{"type": "string", "description": "Filter to one page URL"},
			"limit":    map[string]any{"type": "integer", "description": "Max results (default 50)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*historyRequest)
		return s.History(ctx, r.PageURL, r.Limit)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r historyRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- get ---

type getRequest struct {
	ID string `json:"id"`
}

func (s *Snapshotter) registerGetTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domsnap_get",
		Description: "Load one stored snapshot by ID, node tree included.",
		InputSchema: inputSchema(map[string]any{
			"id": map[string]any{"type": "string", "description": "Snapshot ID from domsnap_history"},
		}, []string{"id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*getRequest)
		return s.GetSnapshot(ctx, r.ID)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r getRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
