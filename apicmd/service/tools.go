package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gcnwokike/API-Commander/apicmd/cliutil"
	"github.com/gcnwokike/API-Commander/apicmd/request"
	"github.com/gcnwokike/API-Commander/apicmd/session"
	"github.com/gcnwokike/API-Commander/apicmd/transport"
)

// bodyPreviewLimit bounds the response body returned inline to tool callers.
const bodyPreviewLimit = 4096

func (s *Server) registerTools() {
	s.mcpServer.AddTool(s.requestSendTool(), s.handleRequestSend)
	s.mcpServer.AddTool(s.sessionListTool(), s.handleSessionList)
	s.mcpServer.AddTool(s.sessionGetTool(), s.handleSessionGet)
	s.mcpServer.AddTool(s.sessionCreateTool(), s.handleSessionCreate)
	s.mcpServer.AddTool(s.sessionSwitchTool(), s.handleSessionSwitch)
	s.mcpServer.AddTool(s.sessionDeleteTool(), s.handleSessionDelete)
}

func (s *Server) requestSendTool() mcp.Tool {
	return mcp.NewTool("request_send",
		mcp.WithDescription(`Send an HTTP request based on the active session's state.

Any argument given overrides that part of the session's request for this
send; overrides are persisted back into the session. With no session and a
url argument, sends a one-off request.

Returns: status, duration_ms, size, headers, cookies, body (truncated).`),
		mcp.WithString("url", mcp.Description("Target URL (e.g., 'https://api.example.com/users')")),
		mcp.WithString("method", mcp.Description("HTTP method (GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS)")),
		mcp.WithObject("headers", mcp.Description("Headers as object: {\"Name\": \"Value\"}")),
		mcp.WithString("json_body", mcp.Description("JSON request body (switches the session body type to JSON)")),
		mcp.WithString("session_key", mcp.Description("Send a specific session instead of the active one")),
	)
}

func (s *Server) handleRequestSend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, fromActive, errMsg := s.resolveState(req.GetString("session_key", ""))
	if errMsg != "" {
		return errorResult(errMsg), nil
	}

	if url := req.GetString("url", ""); url != "" {
		state.URL = url
	}
	if method := req.GetString("method", ""); method != "" {
		state.Method = request.Method(strings.ToUpper(method))
	}
	// Parse headers from object
	if args := req.GetArguments(); args != nil {
		if headersRaw, ok := args["headers"]; ok && headersRaw != nil {
			if headersMap, ok := headersRaw.(map[string]interface{}); ok {
				for name, v := range headersMap {
					if value, ok := v.(string); ok {
						setHeaderEntry(&state.Headers, name, value)
					}
				}
			}
		}
		if body, ok := args["json_body"].(string); ok {
			state.Body.Type = request.BodyJSON
			state.Body.JSONContent = body
		}
	}

	if err := state.Validate(); err != nil {
		return errorResult(err.Error()), nil
	}
	prepared, err := request.Build(state, time.Now())
	if err != nil {
		return errorResult("build request: " + err.Error()), nil
	}

	resp, err := s.sender.Send(ctx, prepared)
	if err != nil {
		switch {
		case errors.Is(err, transport.ErrCancelled):
			return errorResult("request cancelled"), nil
		case errors.Is(err, transport.ErrTimeout):
			return errorResult("request timed out after " + s.cfg.SendTimeout().String()), nil
		}
		return errorResult("send: " + err.Error()), nil
	}

	if fromActive {
		s.scheduleSave(state)
	}
	return jsonResult(sendResultPayload(resp))
}

// setHeaderEntry updates the first entry matching name (case-insensitive)
// or appends a new enabled one, restoring the sentinel afterwards.
func setHeaderEntry(list *request.KVList, name, value string) {
	for i := range *list {
		if (*list)[i].Key != "" && strings.EqualFold((*list)[i].Key, name) {
			(*list)[i].Value = value
			(*list)[i].Enabled = true
			return
		}
	}
	entry := request.NewEntry()
	entry.Key = name
	entry.Value = value
	*list = append(*list, entry)
	list.Normalize()
}

// resolveState mirrors the CLI: named session, active session, or a fresh
// default. The error string is non-empty on a bad session key.
func (s *Server) resolveState(key string) (*request.Spec, bool, string) {
	if key != "" {
		sess, ok := s.sessions.Get(key)
		if !ok {
			return nil, false, "session not found: " + key
		}
		return sess.State, key == s.sessions.ActiveKey(), ""
	}
	if sess, ok := s.sessions.Active(); ok {
		return sess.State, true, ""
	}
	return request.DefaultSpec(), false, ""
}

func sendResultPayload(resp *transport.Response) map[string]any {
	headers := make(map[string]string, len(resp.Headers))
	for name := range resp.Headers {
		headers[name] = resp.Headers.Get(name)
	}
	cookies := make(map[string]string, len(resp.Cookies))
	for _, cookie := range resp.Cookies {
		cookies[cookie.Name] = cookie.Value
	}

	body := string(resp.Body)
	truncated := false
	if len(body) > bodyPreviewLimit {
		body = body[:bodyPreviewLimit]
		truncated = true
	}

	return map[string]any{
		"status":         resp.Status,
		"status_text":    resp.StatusLine(),
		"protocol":       resp.Proto,
		"duration_ms":    resp.Duration.Milliseconds(),
		"size":           cliutil.FormatBytes(resp.Size),
		"headers":        headers,
		"cookies":        cookies,
		"body":           body,
		"body_truncated": truncated,
	}
}

func (s *Server) sessionListTool() mcp.Tool {
	return mcp.NewTool("session_list",
		mcp.WithDescription(`List saved sessions, most recently modified first.

Returns: array of {key, name, modified_ms, active}.`),
	)
}

func (s *Server) handleSessionList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	active := s.sessions.ActiveKey()
	sessions := s.sessions.ListAll()

	entries := make([]map[string]any, 0, len(sessions))
	for _, sess := range sessions {
		entries = append(entries, map[string]any{
			"key":         sess.Key,
			"name":        sess.Name,
			"modified_ms": sess.Timestamp,
			"active":      sess.Key == active,
		})
	}
	return jsonResult(map[string]any{"sessions": entries})
}

func (s *Server) sessionGetTool() mcp.Tool {
	return mcp.NewTool("session_get",
		mcp.WithDescription(`Get a session's full request state.

Returns the editable request: method, url, query params, headers, cookies,
auth config, and body config.`),
		mcp.WithString("key", mcp.Description("Session key (defaults to the active session)")),
	)
}

func (s *Server) handleSessionGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	var sess *session.Session
	if key == "" {
		active, ok := s.sessions.Active()
		if !ok {
			return errorResult("no active session"), nil
		}
		sess = active
	} else {
		found, ok := s.sessions.Get(key)
		if !ok {
			return errorResult("session not found: " + key), nil
		}
		sess = found
	}

	return jsonResult(map[string]any{
		"key":         sess.Key,
		"name":        sess.Name,
		"modified_ms": sess.Timestamp,
		"state":       sess.State,
	})
}

func (s *Server) sessionCreateTool() mcp.Tool {
	return mcp.NewTool("session_create",
		mcp.WithDescription(`Create a new session and make it active.

Returns: {key, name}.`),
		mcp.WithString("url", mcp.Description("Request URL for the new session")),
		mcp.WithString("method", mcp.Description("HTTP method for the new session (default: POST)")),
	)
}

func (s *Server) handleSessionCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state := request.DefaultSpec()
	if url := req.GetString("url", ""); url != "" {
		state.URL = url
	}
	if method := req.GetString("method", ""); method != "" {
		state.Method = request.Method(strings.ToUpper(method))
		if !state.Method.Valid() {
			return errorResult("unsupported HTTP method: " + method), nil
		}
	}

	sess, err := s.sessions.Create(state, time.Now())
	if err != nil {
		return errorResult("create session: " + err.Error()), nil
	}
	return jsonResult(map[string]any{"key": sess.Key, "name": sess.Name})
}

func (s *Server) sessionSwitchTool() mcp.Tool {
	return mcp.NewTool("session_switch",
		mcp.WithDescription(`Make the named session active.

Returns: {key, name}.`),
		mcp.WithString("key", mcp.Required(), mcp.Description("Session key to activate")),
	)
}

func (s *Server) handleSessionSwitch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	if key == "" {
		return errorResult("key is required"), nil
	}

	// Pending writes target the previously active session; land them first.
	s.saver.Flush()

	sess, err := s.sessions.Switch(key)
	if err != nil {
		return errorResult("session not found: " + key), nil
	}
	return jsonResult(map[string]any{"key": sess.Key, "name": sess.Name})
}

func (s *Server) sessionDeleteTool() mcp.Tool {
	return mcp.NewTool("session_delete",
		mcp.WithDescription(`Delete a session. Deleting the active session activates the most
recently modified remaining one.

Returns: {deleted, active}.`),
		mcp.WithString("key", mcp.Required(), mcp.Description("Session key to delete")),
	)
}

func (s *Server) handleSessionDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	if key == "" {
		return errorResult("key is required"), nil
	}

	s.saver.Flush()

	if err := s.sessions.Delete(key); err != nil {
		return errorResult("session not found: " + key), nil
	}
	return jsonResult(map[string]any{"deleted": key, "active": s.sessions.ActiveKey()})
}

func jsonResult(data interface{}) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errorResult("failed to marshal response: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func errorResult(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}
