// Package api provides the HTTP remote control for ampswitcher
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PixPMusic/ampswitcher/internal/config"
	"github.com/PixPMusic/ampswitcher/internal/controller"
	"github.com/PixPMusic/ampswitcher/internal/midi"
	"github.com/PixPMusic/ampswitcher/internal/profile"
)

const shutdownTimeout = 5 * time.Second

// Server exposes a started controller over HTTP. All controller access is
// serialized by mu, including input events drained from the MIDI session.
type Server struct {
	mu     sync.Mutex
	ctl    *controller.Controller
	engine *gin.Engine
	status string
}

// NewServer wires the routes and registers the server as the controller's
// listener. It starts forwarding MIDI input events to the controller until
// the session is closed.
func NewServer(ctl *controller.Controller) *Server {
	s := &Server{ctl: ctl}
	ctl.SetListener(s)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/state", s.getState)
		v1.GET("/ports", s.listPorts)
		v1.PUT("/output", s.selectOutput)
		v1.PUT("/channel", s.selectChannel)
		v1.GET("/profiles", s.listProfiles)
		v1.GET("/profile", s.getProfile)
		v1.PUT("/profile", s.changeProfile)
		v1.POST("/buttons/:index/press", s.pressButton)
		v1.POST("/recording/start", s.startRecording)
		v1.POST("/recording/stop", s.stopRecording)
		v1.DELETE("/recording", s.clearRecording)
		v1.POST("/recording/save", s.saveRecording)
	}
	s.engine = r

	go s.pumpEvents()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// ApplyState implements controller.Listener.
func (s *Server) ApplyState(p *profile.Profile, _ *config.Settings) {
	slog.Debug("profile applied", "name", p.Name, "buttons", len(p.Buttons))
}

// Status implements controller.Listener.
func (s *Server) Status(msg string) {
	s.status = msg
}

func (s *Server) pumpEvents() {
	for ev := range s.ctl.Events() {
		s.mu.Lock()
		s.ctl.HandleEvent(ev)
		s.mu.Unlock()
	}
}

// locked runs fn with exclusive access to the controller and resets the
// status captured from it.
func (s *Server) locked(fn func() error) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = ""
	err := fn()
	return s.status, err
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ampswitcher",
	})
}

func (s *Server) getState(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"state":    s.ctl.State().String(),
		"output":   s.ctl.Output(),
		"channel":  s.ctl.Channel(),
		"settings": s.ctl.Settings(),
		"profile":  s.ctl.Profile(),
	})
}

func (s *Server) listPorts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"outputs": s.ctl.Outputs(),
		"current": s.ctl.Output(),
	})
}

type outputRequest struct {
	Name string `json:"name" binding:"required"`
	Save bool   `json:"save"`
}

func (s *Server) selectOutput(c *gin.Context) {
	var req outputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, err := s.locked(func() error {
		if err := s.ctl.SelectOutput(req.Name); err != nil {
			return err
		}
		if req.Save {
			return s.ctl.SaveSettings()
		}
		return nil
	})
	respond(c, status, err)
}

type channelRequest struct {
	Channel *int `json:"channel" binding:"required"`
	Save    bool `json:"save"`
}

func (s *Server) selectChannel(c *gin.Context) {
	var req channelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, err := s.locked(func() error {
		if err := s.ctl.SelectChannel(*req.Channel); err != nil {
			return err
		}
		if req.Save {
			return s.ctl.SaveChannel()
		}
		return nil
	})
	respond(c, status, err)
}

func (s *Server) listProfiles(c *gin.Context) {
	s.mu.Lock()
	names, err := s.ctl.ListProfiles()
	s.mu.Unlock()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": names})
}

func (s *Server) getProfile(c *gin.Context) {
	s.mu.Lock()
	p := s.ctl.Profile()
	s.mu.Unlock()
	c.JSON(http.StatusOK, p)
}

type profileRequest struct {
	File string `json:"file" binding:"required"`
}

func (s *Server) changeProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, err := s.locked(func() error {
		return s.ctl.ChangeProfile(req.File)
	})
	respond(c, status, err)
}

func (s *Server) pressButton(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, err)
		return
	}
	status, err := s.locked(func() error {
		return s.ctl.Press(index)
	})
	respond(c, status, err)
}

func (s *Server) startRecording(c *gin.Context) {
	var input string
	status, err := s.locked(func() error {
		var err error
		input, err = s.ctl.StartRecording()
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "input": input})
}

func (s *Server) stopRecording(c *gin.Context) {
	var candidate *profile.Profile
	status, _ := s.locked(func() error {
		candidate = s.ctl.StopRecording()
		return nil
	})
	c.JSON(http.StatusOK, gin.H{"status": status, "profile": candidate})
}

func (s *Server) clearRecording(c *gin.Context) {
	status, _ := s.locked(func() error {
		s.ctl.ClearRecording()
		return nil
	})
	c.JSON(http.StatusOK, gin.H{"status": status})
}

type saveRecordingRequest struct {
	File string `json:"file"`
}

func (s *Server) saveRecording(c *gin.Context) {
	var req saveRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var file string
	status, err := s.locked(func() error {
		file = req.File
		if file == "" {
			file = s.ctl.RecordingName()
		}
		return s.ctl.SaveRecording(file)
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "file": file})
}

func respond(c *gin.Context, status string, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func fail(c *gin.Context, err error) {
	c.JSON(statusCode(err), gin.H{"error": err.Error()})
}

// statusCode maps domain errors onto HTTP status codes.
func statusCode(err error) int {
	switch {
	case errors.Is(err, controller.ErrNoButton),
		errors.Is(err, profile.ErrProfileNotFound),
		errors.Is(err, midi.ErrPortUnavailable):
		return http.StatusNotFound
	case errors.Is(err, controller.ErrInvalidState),
		errors.Is(err, controller.ErrNoRecording),
		errors.Is(err, midi.ErrNoOutputConfigured):
		return http.StatusConflict
	case errors.Is(err, midi.ErrValueRange),
		errors.Is(err, profile.ErrProfileInvalid),
		errors.Is(err, profile.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
