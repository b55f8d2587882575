// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Cutline timeline editing tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/cutline/internal/library"
	"github.com/starford/cutline/internal/models"
	"github.com/starford/cutline/internal/projectservice"
	"github.com/starford/cutline/internal/timeline"
)

const snapshotFormatURI = "cutline://snapshot-format"

// Server wraps the MCP server with Cutline tools.
type Server struct {
	mcp *server.MCPServer
	svc *projectservice.Service
	lib library.Provider
}

// New creates a new MCP server with all Cutline tools registered. lib may be
// nil, which disables upload_media.
func New(svc *projectservice.Service, lib library.Provider) *Server {
	s := &Server{svc: svc, lib: lib}

	s.mcp = server.NewMCPServer(
		"Cutline",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List projects, or search project and clip names when query is set."),
		mcp.WithString("query", mcp.Description("Optional search query")),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create an empty project and return it."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
	), s.createProject)

	s.mcp.AddTool(mcp.NewTool("get_timeline",
		mcp.WithDescription("Return the live editor state of a project: tracks, clips, duration, "+
			"playhead, selection and undo/redo availability. The structure is described by "+
			"the get_snapshot_format tool or the "+snapshotFormatURI+" resource."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
	), s.getTimeline)

	s.mcp.AddTool(mcp.NewTool("add_track",
		mcp.WithDescription("Append a track. Without a type, the first track is background, "+
			"the next one video and the rest audio."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithString("type", mcp.Description("Track type"), mcp.Enum("background", "video", "audio")),
		mcp.WithString("name", mcp.Description("Optional display name")),
	), s.addTrack)

	s.mcp.AddTool(mcp.NewTool("add_clip",
		mcp.WithDescription("Insert a clip into a track. Times are in seconds; the clip covers "+
			"[start_time, end_time). Defaults to a 5 second clip at 0."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithString("track_id", mcp.Required(), mcp.Description("Track ID")),
		mcp.WithNumber("start_time", mcp.Description("Start time in seconds")),
		mcp.WithNumber("end_time", mcp.Description("End time in seconds")),
		mcp.WithObject("payload", mcp.Description("Free-form clip data, e.g. name and source")),
	), s.addClip)

	s.mcp.AddTool(mcp.NewTool("split_clip",
		mcp.WithDescription("Split a clip in two. Without at, splits at the playhead. "+
			"Returns the id of the new right-hand clip."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithString("clip_id", mcp.Required(), mcp.Description("Clip ID")),
		mcp.WithNumber("at", mcp.Description("Split time in seconds, strictly inside the clip")),
	), s.splitClip)

	s.mcp.AddTool(mcp.NewTool("move_clip",
		mcp.WithDescription("Move a clip to a new start time, keeping its length."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithString("clip_id", mcp.Required(), mcp.Description("Clip ID")),
		mcp.WithNumber("start_time", mcp.Required(), mcp.Description("New start time in seconds")),
	), s.moveClip)

	s.mcp.AddTool(mcp.NewTool("remove_clip",
		mcp.WithDescription("Remove a clip."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithString("clip_id", mcp.Required(), mcp.Description("Clip ID")),
	), s.removeClip)

	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last timeline edit."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
	), s.undo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone timeline edit."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
	), s.redo)

	s.mcp.AddTool(mcp.NewTool("save_timeline",
		mcp.WithDescription("Persist the live timeline of a project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
	), s.saveTimeline)

	s.mcp.AddTool(mcp.NewTool("get_snapshot_format",
		mcp.WithDescription("Returns the timeline snapshot format. "+
			"Call this before editing to understand tracks, clips and time ranges."),
	), s.getSnapshotFormat)

	s.mcp.AddTool(mcp.NewTool("upload_media",
		mcp.WithDescription("Download a video, audio or image file into the media library "+
			"and return a source URL to store in a clip payload."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or base64 data URI")),
		mcp.WithString("filename", mcp.Description("Optional file name including extension")),
	), s.uploadMedia)

	// Resource: snapshot format.
	s.mcp.AddResource(
		mcp.NewResource(snapshotFormatURI, "Timeline Snapshot Format",
			mcp.WithResourceDescription("Structure of Cutline timelines, tracks and clips."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSnapshotFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(op string, err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", op, err)), nil
}

// optionalFloat returns a pointer to a numeric argument, or nil when absent.
func optionalFloat(req mcp.CallToolRequest, key string) *float64 {
	v, err := req.RequireFloat(key)
	if err != nil {
		return nil
	}
	return &v
}

func (s *Server) listProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if query := req.GetString("query", ""); query != "" {
		results, err := s.svc.SearchProjects(ctx, query, 20)
		if err != nil {
			return toolError("search", err)
		}
		return jsonResult(results)
	}
	projects, _, err := s.svc.ListProjects(ctx, 100, 0)
	if err != nil {
		return toolError("list projects", err)
	}
	if projects == nil {
		projects = []models.ProjectMetadata{}
	}
	return jsonResult(projects)
}

func (s *Server) createProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.CreateProject(ctx, name, nil)
	if err != nil {
		return toolError("create project", err)
	}
	return jsonResult(p)
}

func (s *Server) getTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Timeline(ctx, id)
	if err != nil {
		return toolError("get timeline", err)
	}
	return jsonResult(res.State)
}

func (s *Server) addTrack(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec := timeline.TrackSpec{
		Type: models.TrackType(req.GetString("type", "")),
		Name: req.GetString("name", ""),
	}
	res, err := s.svc.AddTrack(ctx, id, spec)
	if err != nil {
		return toolError("add track", err)
	}
	return jsonResult(res)
}

func (s *Server) addClip(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	trackID, err := req.RequireString("track_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec := timeline.ClipSpec{
		StartTime: optionalFloat(req, "start_time"),
		EndTime:   optionalFloat(req, "end_time"),
	}
	if p, ok := req.GetArguments()["payload"].(map[string]any); ok {
		spec.Payload = models.Payload(p)
	}
	res, err := s.svc.AddClip(ctx, id, trackID, spec)
	if err != nil {
		return toolError("add clip", err)
	}
	return jsonResult(res)
}

func (s *Server) splitClip(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	clipID, err := req.RequireString("clip_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.SplitClip(ctx, id, clipID, optionalFloat(req, "at"))
	if err != nil {
		return toolError("split clip", err)
	}
	return jsonResult(res)
}

func (s *Server) moveClip(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	clipID, err := req.RequireString("clip_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := req.RequireFloat("start_time")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.MoveClip(ctx, id, clipID, start)
	if err != nil {
		return toolError("move clip", err)
	}
	return jsonResult(res)
}

func (s *Server) removeClip(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	clipID, err := req.RequireString("clip_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.RemoveClip(ctx, id, clipID)
	if err != nil {
		return toolError("remove clip", err)
	}
	return jsonResult(res)
}

func (s *Server) undo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Undo(ctx, id)
	if err != nil {
		return toolError("undo", err)
	}
	if !res.Changed {
		return mcp.NewToolResultText("nothing to undo"), nil
	}
	return jsonResult(res)
}

func (s *Server) redo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Redo(ctx, id)
	if err != nil {
		return toolError("redo", err)
	}
	if !res.Changed {
		return mcp.NewToolResultText("nothing to redo"), nil
	}
	return jsonResult(res)
}

func (s *Server) saveTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.SaveTimeline(ctx, id, "")
	if err != nil {
		return toolError("save timeline", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s (checksum %s)", p.ID, p.Checksum)), nil
}

func (s *Server) getSnapshotFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SnapshotFormat), nil
}

func (s *Server) readSnapshotFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      snapshotFormatURI,
			MIMEType: "text/markdown",
			Text:     SnapshotFormat,
		},
	}, nil
}
