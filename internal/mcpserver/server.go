// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes project tracker tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/followup/internal/apperr"
	"github.com/starford/followup/internal/models"
	"github.com/starford/followup/internal/projectservice"
)

const dataFormatURI = "followup://data-format"

// Server wraps the MCP server with project tracker tools.
type Server struct {
	mcp *server.MCPServer
	svc *projectservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *projectservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Follow-up",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects with their tasks and meeting notes."),
		mcp.WithString("owner", mcp.Description("Only projects of this owner (empty for all)")),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("get_project",
		mcp.WithDescription("Read a single project by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Project id, e.g. 3")),
	), s.getProject)

	s.mcp.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a project. Status defaults to In Progress."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("owner", mcp.Description("Person responsible for the project")),
		mcp.WithString("status", mcp.Description("Project status")),
	), s.createProject)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a To Do task to a project. Read the data format via "+
			"the get_data_format tool or the "+dataFormatURI+" resource first."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
	), s.addTask)

	s.mcp.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Change a task's title, status or statusDate. "+
			"Changing status without statusDate stamps today's date."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id, e.g. 3-1")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("status", mcp.Description("New status"),
			mcp.Enum(models.StatusToDo, models.StatusInProgress, models.StatusDone)),
		mcp.WithString("statusDate", mcp.Description("Explicit status date text")),
	), s.updateTask)

	s.mcp.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id, e.g. 3-1")),
	), s.deleteTask)

	s.mcp.AddTool(mcp.NewTool("set_meeting_note",
		mcp.WithDescription("Set the meeting note for a week, or delete the week when note is omitted."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		mcp.WithString("week", mcp.Required(), mcp.Description("Week label, e.g. 2026-W43")),
		mcp.WithString("note", mcp.Description("Note text; omit to delete the week")),
	), s.setMeetingNote)

	s.mcp.AddTool(mcp.NewTool("get_data_format",
		mcp.WithDescription("Returns the tracker's data format and id rules."),
	), s.getDataFormat)

	s.mcp.AddResource(
		mcp.NewResource(dataFormatURI, "Data Format",
			mcp.WithResourceDescription("JSON document layout, id rules and status phrases."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDataFormatResource,
	)

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

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// errorResult turns a service error into a tool error.
func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %v", err))
	}
	return mcp.NewToolResultError(err.Error())
}

// optional returns a pointer to the argument when it was supplied.
func optional(req mcp.CallToolRequest, key string) *string {
	v, err := req.RequireString(key)
	if err != nil {
		return nil
	}
	return &v
}

func (s *Server) listProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	db, err := s.svc.Database(ctx, req.GetString("owner", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(db.Projects)
}

func (s *Server) getProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.GetProject(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(p)
}

func (s *Server) createProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.CreateProject(ctx, projectservice.CreateProjectInput{
		Name:   name,
		Owner:  optional(req, "owner"),
		Status: optional(req, "status"),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(p)
}

func (s *Server) addTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.CreateTask(ctx, projectID, projectservice.CreateTaskInput{Title: title})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(t)
}

func (s *Server) updateTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.UpdateTask(ctx, id, projectservice.TaskPatch{
		Title:      optional(req, "title"),
		Status:     optional(req, "status"),
		StatusDate: optional(req, "statusDate"),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(t)
}

func (s *Server) deleteTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteTask(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) setMeetingNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	week, err := req.RequireString("week")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note := optional(req, "note")
	meetings, err := s.svc.SetMeetingNote(ctx, projectID, week, note)
	if err != nil {
		return errorResult(err), nil
	}
	if note == nil {
		return mcp.NewToolResultText(fmt.Sprintf("%s deleted", week)), nil
	}
	return jsonResult(meetings)
}

func (s *Server) getDataFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DataFormatContract), nil
}

func (s *Server) readDataFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      dataFormatURI,
			MIMEType: "text/markdown",
			Text:     DataFormatContract,
		},
	}, nil
}
