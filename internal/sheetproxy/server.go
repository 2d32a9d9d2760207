// Package sheetproxy serves the spreadsheet proxy protocol from a local
// SQLite table, so weekgrid can run against a self-hosted backend.
package sheetproxy

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/weekgrid/internal/logger"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/sheets"
)

const (
	actionKey       = "proxy.action"
	shutdownTimeout = 5 * time.Second
)

type readQuery struct {
	Action    string `form:"action" binding:"required,oneof=read getAvailableWeeks"`
	WeekStart string `form:"week_start" binding:"omitempty,sheetdate"`
}

type envelope struct {
	Action string `json:"action" binding:"required,oneof=create update delete"`
}

type rowPayload struct {
	WeekStart string `json:"week_start" binding:"required,sheetdate"`
	Day       string `json:"day" binding:"required,weekday"`
	Task      string `json:"task" binding:"required"`
	StartTime string `json:"start_time" binding:"required,clock"`
	EndTime   string `json:"end_time" binding:"required,clock"`
	Color     string `json:"color"`
	Category  string `json:"category"`
}

type updatePayload struct {
	rowPayload
	RowIndex int `json:"rowIndex" binding:"required,gt=0"`
}

type deletePayload struct {
	RowIndex int `json:"rowIndex" binding:"required,gt=0"`
}

func (p rowPayload) row(rowIndex int) sheets.Row {
	week, _ := sheets.ParseWeekStart(p.WeekStart)
	return sheets.Row{
		WeekStart: week.SheetDate(),
		Day:       p.Day,
		Task:      p.Task,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		Color:     p.Color,
		Category:  p.Category,
		RowIndex:  rowIndex,
	}
}

var registerOnce sync.Once

func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("sheetdate", func(fl validator.FieldLevel) bool {
			_, err := sheets.ParseWeekStart(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			_, err := models.ParseDay(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			_, err := models.ParseClock(fl.Field().String())
			return err == nil
		})
	})
}

// Server answers the proxy protocol: GET reads rows or lists weeks, POST
// creates, updates or deletes one row.
type Server struct {
	store   *Store
	metrics *metrics
	engine  *gin.Engine
}

func NewServer(store *Store) *Server {
	gin.SetMode(gin.ReleaseMode)
	registerValidators()

	s := &Server{
		store:   store,
		metrics: newMetrics(),
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery(), requestLogger(), s.metrics.middleware())

	s.engine.GET("/", s.handleGet)
	s.engine.POST("/", s.handlePost)
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	s.refreshRowGauge(context.Background())
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Sheet proxy listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("Sheet proxy shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleGet(c *gin.Context) {
	var q readQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Set(actionKey, c.Query("action"))
		fail(c, http.StatusBadRequest, err)
		return
	}
	c.Set(actionKey, q.Action)
	ctx := c.Request.Context()

	switch q.Action {
	case sheets.ActionRead:
		weekStart := ""
		if q.WeekStart != "" {
			week, _ := sheets.ParseWeekStart(q.WeekStart)
			weekStart = week.SheetDate()
		}
		rows, err := s.store.Read(ctx, weekStart)
		if err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
	case sheets.ActionAvailableWeeks:
		weeks, err := s.store.Weeks(ctx)
		if err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "weeks": weeks})
	}
}

func (s *Server) handlePost(c *gin.Context) {
	var env envelope
	if err := c.ShouldBindBodyWith(&env, binding.JSON); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	c.Set(actionKey, env.Action)
	ctx := c.Request.Context()

	switch env.Action {
	case sheets.ActionCreate:
		var p rowPayload
		if err := c.ShouldBindBodyWith(&p, binding.JSON); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		id, err := s.store.Create(ctx, p.row(0))
		if err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		s.refreshRowGauge(ctx)
		c.JSON(http.StatusOK, gin.H{"success": true, "rowIndex": id, "message": "Row created"})
	case sheets.ActionUpdate:
		var p updatePayload
		if err := c.ShouldBindBodyWith(&p, binding.JSON); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		if err := s.store.Update(ctx, p.row(p.RowIndex)); err != nil {
			fail(c, statusFor(err), err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "rowIndex": p.RowIndex, "message": "Row updated"})
	case sheets.ActionDelete:
		var p deletePayload
		if err := c.ShouldBindBodyWith(&p, binding.JSON); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		if err := s.store.Delete(ctx, p.RowIndex); err != nil {
			fail(c, statusFor(err), err)
			return
		}
		s.refreshRowGauge(ctx)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Row deleted"})
	}
}

func (s *Server) refreshRowGauge(ctx context.Context) {
	n, err := s.store.Count(ctx)
	if err != nil {
		logger.Warn("Failed to count proxy rows", "error", err)
		return
	}
	s.metrics.rows.Set(float64(n))
}

func statusFor(err error) int {
	if errors.Is(err, ErrRowNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("Proxy request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": err.Error()})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Proxy request",
			"method", c.Request.Method,
			"action", c.GetString(actionKey),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
			"client", strings.TrimSpace(c.ClientIP()),
		)
	}
}
