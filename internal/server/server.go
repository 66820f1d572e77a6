// Package server exposes the mind map and mission runner over HTTP.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/deren/internal/core"
	"github.com/agenthands/deren/internal/core/common"
	"github.com/agenthands/deren/internal/core/graph"
	"github.com/agenthands/deren/internal/core/mission"
	"github.com/agenthands/deren/internal/core/model"
)

type Server struct {
	Deren  *core.Deren
	logger *zap.Logger
}

func NewServer(d *core.Deren, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Deren: d, logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), Logger(s.logger))
	if s.Deren.Metrics != nil {
		r.Use(Metrics(s.Deren.Metrics))
		r.GET("/metrics", gin.WrapH(s.Deren.Metrics.Handler()))
	}

	r.POST("/commands", s.RunCommand)
	r.GET("/commands/stream", s.StreamCommand)

	r.GET("/graph", s.GetGraph)
	r.GET("/graph/clusters", s.GetClusters)
	r.DELETE("/graph", s.ClearGraph)
	r.POST("/graph/persist", s.PersistGraph)
	r.POST("/graph/restore", s.RestoreGraph)

	r.POST("/nodes", s.CreateNode)
	r.PUT("/nodes/:id", s.UpdateNode)
	r.DELETE("/nodes/:id", s.DeleteNode)
	r.POST("/connections", s.CreateConnection)
	r.POST("/canvas", s.CreateCanvas)

	r.GET("/project", s.DownloadProject)
	r.POST("/project", s.UploadProject)

	r.GET("/status", s.Status)
	r.GET("/stats", s.Stats)
	r.GET("/search", s.Search)

	return r
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var loadErr *common.LoadFormatError
	var validationErr *common.ValidationError
	switch {
	case errors.Is(err, common.ErrMissionInProgress):
		return http.StatusConflict
	case errors.Is(err, common.ErrCancelled):
		return http.StatusRequestTimeout
	case errors.Is(err, core.ErrNoRepository):
		return http.StatusServiceUnavailable
	case errors.As(err, &loadErr):
		return http.StatusBadRequest
	case errors.As(err, &validationErr):
		if validationErr.Kind == common.UnknownNode {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

type CommandRequest struct {
	Command string `json:"command" binding:"required"`
}

type CommandResponse struct {
	core.CommandResult
	Progress    []mission.Progress `json:"progress"`
	Nodes       []model.Node       `json:"nodes"`
	Connections []model.Connection `json:"connections"`
}

func (s *Server) RunCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	progress := []mission.Progress{}
	res, err := s.Deren.HandleCommand(c.Request.Context(), req.Command, func(p mission.Progress) {
		progress = append(progress, p)
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	nodes, conns := s.Deren.Graph.Snapshot()
	c.JSON(http.StatusOK, CommandResponse{
		CommandResult: res,
		Progress:      progress,
		Nodes:         nodes,
		Connections:   conns,
	})
}

// StreamCommand runs a command and reports progress as server-sent events,
// finishing with a done or error event.
func (s *Server) StreamCommand(c *gin.Context) {
	command := c.Query("command")
	if command == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "command is required"})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	res, err := s.Deren.HandleCommand(c.Request.Context(), command, func(p mission.Progress) {
		c.SSEvent("progress", p)
		c.Writer.Flush()
	})
	if err != nil {
		c.SSEvent("error", gin.H{"error": err.Error(), "status": statusFor(err)})
		c.Writer.Flush()
		return
	}
	c.SSEvent("done", res)
	c.Writer.Flush()
}

func (s *Server) GetGraph(c *gin.Context) {
	nodes, conns := s.Deren.Graph.Snapshot()
	c.JSON(http.StatusOK, gin.H{"nodes": nodes, "connections": conns})
}

func (s *Server) GetClusters(c *gin.Context) {
	clusters := s.Deren.Graph.Clusters()
	if clusters == nil {
		clusters = []graph.Cluster{}
	}
	c.JSON(http.StatusOK, gin.H{"clusters": clusters})
}

func (s *Server) ClearGraph(c *gin.Context) {
	s.Deren.Clear()
	c.Status(http.StatusNoContent)
}

// CreateNodeRequest carries a full node, or only a position to place a new
// research node.
type CreateNodeRequest struct {
	Node     *model.Node     `json:"node"`
	Position *model.Position `json:"position"`
}

func (s *Server) CreateNode(c *gin.Context) {
	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Node != nil {
		node := *req.Node
		if node.Metadata.Timestamp.IsZero() {
			node.Metadata.Timestamp = time.Now().UTC()
		}
		if err := s.Deren.AddNode(node); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, node)
		return
	}

	var pos model.Position
	if req.Position != nil {
		pos = *req.Position
	}
	node, err := s.Deren.CreateResearchNode(pos)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

func (s *Server) UpdateNode(c *gin.Context) {
	var node model.Node
	if err := c.ShouldBindJSON(&node); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	node.ID = c.Param("id")

	if err := s.Deren.UpdateNode(node); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (s *Server) DeleteNode(c *gin.Context) {
	if err := s.Deren.RemoveNode(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type ConnectRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

func (s *Server) CreateConnection(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	conn, err := s.Deren.Connect(req.From, req.To)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

type CanvasRequest struct {
	Position model.Position `json:"position"`
}

func (s *Server) CreateCanvas(c *gin.Context) {
	var req CanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	node, err := s.Deren.CreateCanvasPage(req.Position)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

func (s *Server) DownloadProject(c *gin.Context) {
	title := c.DefaultQuery("title", graph.DefaultProjectTitle)
	c.Header("Content-Disposition", `attachment; filename="deren-project.json"`)
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := s.Deren.SaveProject(c.Writer, title); err != nil {
		s.logger.Error("Failed to write project", zap.Error(err))
	}
}

func (s *Server) UploadProject(c *gin.Context) {
	meta, err := s.Deren.LoadProject(c.Request.Body)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metadata": meta, "stats": s.Deren.Stats()})
}

func (s *Server) Status(c *gin.Context) {
	c.JSON(http.StatusOK, s.Deren.Orchestrator.Status())
}

func (s *Server) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.Deren.Stats())
}

func (s *Server) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	hits, err := s.Deren.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if hits == nil {
		hits = []core.SearchHit{}
	}
	c.JSON(http.StatusOK, gin.H{"results": hits})
}

func (s *Server) PersistGraph(c *gin.Context) {
	if err := s.Deren.Persist(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "stats": s.Deren.Stats()})
}

func (s *Server) RestoreGraph(c *gin.Context) {
	if err := s.Deren.Restore(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "stats": s.Deren.Stats()})
}
