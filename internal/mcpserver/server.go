// Package mcpserver exposes the chat controller as MCP tools over stdio so
// that agent hosts can ask legal questions and open cited sources.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"lexi-backend/internal/config"
	"lexi-backend/internal/service"
	"lexi-backend/pkg/logger"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

const (
	ToolAskLegalQuestion   = "ask_legal_question"
	ToolOpenCitationSource = "open_citation_source"
)

type Server struct {
	chat *service.ChatService
	mcp  *server.MCPServer
}

func New(chat *service.ChatService, cfg config.MCPConfig) *Server {
	s := &Server{
		chat: chat,
		mcp:  server.NewMCPServer(cfg.Name, cfg.Version, server.WithToolCapabilities(false), server.WithRecovery()),
	}

	s.mcp.AddTool(mcp.NewTool(ToolAskLegalQuestion,
		mcp.WithDescription("Answer a legal question with citations to the source judgments."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The legal question")),
		mcp.WithString("session_id", mcp.Description("Continue an existing conversation; a new one is created when empty")),
	), s.askLegalQuestion)

	s.mcp.AddTool(mcp.NewTool(ToolOpenCitationSource,
		mcp.WithDescription("Open the document behind a citation of an earlier answer, with the cited paragraph highlighted."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation the answer belongs to")),
		mcp.WithString("message_id", mcp.Required(), mcp.Description("Assistant message carrying the citation")),
		mcp.WithNumber("index", mcp.Description("Position of the citation in the message, default 0")),
	), s.openCitationSource)

	return s
}

// ServeStdio blocks serving MCP on stdin/stdout. Logs must go to stderr.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

type askResult struct {
	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
	Answer    string `json:"answer"`
	Citations any    `json:"citations"`
	Failed    bool   `json:"failed"`
}

func (s *Server) askLegalQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		session, err := s.chat.CreateSession("")
		if err != nil {
			return toolError(ToolAskLegalQuestion, err), nil
		}
		sessionID = session.ID
	}

	result, err := s.chat.Submit(ctx, sessionID, query)
	if err != nil {
		return toolError(ToolAskLegalQuestion, err), nil
	}

	return jsonResult(ToolAskLegalQuestion, askResult{
		SessionID: result.SessionID,
		MessageID: result.Assistant.ID,
		Answer:    result.Assistant.Content,
		Citations: result.Assistant.Citations,
		Failed:    result.Failed,
	}), nil
}

func (s *Server) openCitationSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	messageID, err := request.RequireString("message_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index := request.GetInt("index", 0)

	if _, err := s.chat.SelectCitation(sessionID, messageID, index); err != nil {
		return toolError(ToolOpenCitationSource, err), nil
	}
	doc, err := s.chat.OpenDocument(ctx, sessionID)
	if err != nil {
		return toolError(ToolOpenCitationSource, err), nil
	}

	return jsonResult(ToolOpenCitationSource, doc), nil
}

// toolError reports a failed call inside the result so the host model can
// read it, instead of failing the protocol exchange.
func toolError(name string, err error) *mcp.CallToolResult {
	logger.WithFields(logrus.Fields{"tool": name}).Warnf("tool call failed: %v", err)
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", name, err))
}

func jsonResult(name string, v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(name, err)
	}
	return mcp.NewToolResultText(string(data))
}
