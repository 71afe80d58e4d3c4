// Package rest exposes the crontab core as a JSON API. All semantics live
// in the core packages; handlers only bind input and map error kinds to
// status codes.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cronkeeper/internal/discovery"
	"cronkeeper/internal/jobs"
	"cronkeeper/internal/shared"
	"cronkeeper/internal/store"
)

// EngineProvider resolves the discovery engine for the current state of the
// document; it returns nil when no script root is configured.
type EngineProvider func() (*discovery.Engine, error)

// Server wires the API handlers.
type Server struct {
	jobs   *jobs.Service
	store  *store.Store
	engine EngineProvider
	log    *slog.Logger
}

// NewServer creates the API server.
func NewServer(jobSvc *jobs.Service, st *store.Store, engine EngineProvider, log *slog.Logger) *Server {
	return &Server{jobs: jobSvc, store: st, engine: engine, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/jobs", s.listJobs)
	api.POST("/jobs", s.createJob)
	api.GET("/jobs/:id", s.getJob)
	api.PUT("/jobs/:id", s.updateJob)
	api.DELETE("/jobs/:id", s.deleteJob)
	api.POST("/jobs/:id/enable", s.toggleJob(true))
	api.POST("/jobs/:id/disable", s.toggleJob(false))
	api.GET("/entries", s.listEntries)
	api.GET("/environment", s.globalEnvironment)
	api.GET("/backups", s.listBackups)
	api.POST("/backups", s.createBackup)
	api.GET("/scripts", s.listScripts)
	api.GET("/scripts/args", s.scriptArgs)
	return r
}

func (s *Server) listJobs(c *gin.Context) {
	list, err := s.jobs.List()
	if err != nil {
		s.fail(c, err)
		return
	}
	if list == nil {
		list = []jobs.Job{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createJob(c *gin.Context) {
	var in jobs.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, shared.MarkKind(err, shared.KindValidation))
		return
	}
	j, err := s.jobs.Create(in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, j)
}

func (s *Server) getJob(c *gin.Context) {
	j, err := s.jobs.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, j)
}

func (s *Server) updateJob(c *gin.Context) {
	var in jobs.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, shared.MarkKind(err, shared.KindValidation))
		return
	}
	j, err := s.jobs.Update(c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, j)
}

func (s *Server) deleteJob(c *gin.Context) {
	if err := s.jobs.Delete(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) toggleJob(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.jobs.SetEnabled(c.Param("id"), enabled); err != nil {
			s.fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) listEntries(c *gin.Context) {
	entries, err := s.jobs.ListAll()
	if err != nil {
		s.fail(c, err)
		return
	}
	if entries == nil {
		entries = []jobs.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) globalEnvironment(c *gin.Context) {
	env, err := s.jobs.GlobalEnvironment()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}

func (s *Server) listBackups(c *gin.Context) {
	backups, err := s.store.ListBackups()
	if err != nil {
		s.fail(c, err)
		return
	}
	if backups == nil {
		backups = []store.Backup{}
	}
	c.JSON(http.StatusOK, backups)
}

func (s *Server) createBackup(c *gin.Context) {
	var in struct {
		Label string `json:"label" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, shared.MarkKind(err, shared.KindValidation))
		return
	}
	b, err := s.store.Backup(in.Label)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (s *Server) listScripts(c *gin.Context) {
	eng, err := s.engine()
	if err != nil {
		s.fail(c, err)
		return
	}
	if eng == nil {
		c.JSON(http.StatusOK, []discovery.Script{})
		return
	}
	scripts, err := eng.Discover()
	if err != nil {
		s.fail(c, err)
		return
	}
	if scripts == nil {
		scripts = []discovery.Script{}
	}
	c.JSON(http.StatusOK, scripts)
}

// scriptArgs reports the reverse-engineered argument surface of one
// discovered script, addressed by its relative path.
func (s *Server) scriptArgs(c *gin.Context) {
	rel := c.Query("path")
	if rel == "" {
		s.fail(c, shared.MarkKind(shared.Wrap(shared.ErrValidation, "path query parameter required"), shared.KindValidation))
		return
	}
	eng, err := s.engine()
	if err != nil {
		s.fail(c, err)
		return
	}
	if eng == nil {
		s.fail(c, shared.Wrap(shared.ErrNotFound, "no script root configured"))
		return
	}
	script, err := eng.ValidateCommand(rel)
	if err != nil {
		if shared.IsValidation(err) {
			err = shared.MarkKind(shared.Wrapf(shared.ErrNotFound, "script %s", rel), shared.KindNotFound)
		}
		s.fail(c, err)
		return
	}
	summary, usage := eng.Describe(script.Path)
	c.JSON(http.StatusOK, gin.H{
		"script":  script,
		"summary": summary,
		"usage":   usage,
		"args":    eng.ParseOptions(script.Path),
	})
}

// fail maps the error's kind to a status code and emits a JSON error body.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch shared.KindOf(err) {
	case shared.KindNotFound:
		status = http.StatusNotFound
	case shared.KindValidation:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", slog.String("path", c.FullPath()), slog.Any("err", err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
