// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Jotter note tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/halden/jotter/internal/models"
	"github.com/halden/jotter/internal/noterepo"
	"github.com/halden/jotter/internal/query"
	"github.com/halden/jotter/internal/tags"
)

// Server wraps the MCP server with Jotter tools.
type Server struct {
	mcp  *server.MCPServer
	repo *noterepo.Repository
}

// New creates a new MCP server with all Jotter tools registered.
func New(repo *noterepo.Repository) *Server {
	s := &Server{repo: repo}

	s.mcp = server.NewMCPServer(
		"Jotter",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List active notes, optionally filtered and sorted. "+
			"All filters combine; an empty call returns everything by recency."),
		mcp.WithString("query", mcp.Description("Case-insensitive substring to match in title or body")),
		mcp.WithString("date", mcp.Description("Creation date filter: all, today, week or month")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags; notes carrying any of them match")),
		mcp.WithString("tagged", mcp.Description("Pass true to keep only notes carrying at least one tag")),
		mcp.WithString("long", mcp.Description("Pass true to keep only notes with a long body")),
		mcp.WithString("sort", mcp.Description("Sort order: recent, alphabetical, oldest or most_edited")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a single active note by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. The title must not be blank."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("body", mcp.Description("Note body text")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Update the title, body or tags of an active note. "+
			"Omitted fields are left untouched."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("body", mcp.Description("New body")),
		mcp.WithString("tags", mcp.Description("Comma-separated replacement tag list")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("trash_note",
		mcp.WithDescription("Move an active note to the trash (soft delete, recoverable)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.trashNote)

	s.mcp.AddTool(mcp.NewTool("restore_note",
		mcp.WithDescription("Restore a trashed note to the active collection."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.restoreNote)

	s.mcp.AddTool(mcp.NewTool("purge_note",
		mcp.WithDescription("Permanently delete a note, active or trashed. Irreversible."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.purgeNote)

	s.mcp.AddTool(mcp.NewTool("list_trash",
		mcp.WithDescription("List trashed notes, most recently trashed first."),
	), s.listTrash)

	s.mcp.AddTool(mcp.NewTool("tag_usage",
		mcp.WithDescription("Count how many active notes carry each tag."),
	), s.tagUsage)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func splitTags(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func notesJSON(notes []models.Note) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(notes, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var c query.Criteria
	if v, err := req.RequireString("query"); err == nil {
		c.Search = v
	}
	if v, err := req.RequireString("date"); err == nil {
		c.Date = query.DateFilter(v)
	}
	if v, err := req.RequireString("tags"); err == nil {
		c.Tags = splitTags(v)
	}
	if v, err := req.RequireString("tagged"); err == nil {
		c.TaggedOnly = v == "true"
	}
	if v, err := req.RequireString("long"); err == nil {
		c.LongNotesOnly = v == "true"
	}
	if v, err := req.RequireString("sort"); err == nil {
		c.SortBy = query.SortOption(v)
	}

	return notesJSON(query.Apply(notes, c)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.repo.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body := ""
	if v, err := req.RequireString("body"); err == nil {
		body = v
	}
	var tagList []string
	if v, err := req.RequireString("tags"); err == nil {
		tagList = splitTags(v)
	}

	note, err := s.repo.Create(ctx, title, body, tagList)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", note.ID)), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var patch models.Patch
	if v, err := req.RequireString("title"); err == nil {
		patch.Title = &v
	}
	if v, err := req.RequireString("body"); err == nil {
		patch.Body = &v
	}
	if v, err := req.RequireString("tags"); err == nil {
		tagList := splitTags(v)
		patch.Tags = &tagList
	}

	note, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", note.ID)), nil
}

func (s *Server) trashNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("trashed: %s", id)), nil
}

func (s *Server) restoreNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.repo.Restore(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("restored: %s", id)), nil
}

func (s *Server) purgeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.repo.Purge(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("purged: %s", id)), nil
}

func (s *Server) listTrash(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.repo.ListDeleted(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return notesJSON(notes), nil
}

func (s *Server) tagUsage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(tags.Usage(notes), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
