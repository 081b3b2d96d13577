// Package server exposes the editor over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Fepozopo/pixedit/pkg/editor"
	"github.com/Fepozopo/pixedit/pkg/logging"
	"github.com/Fepozopo/pixedit/pkg/mask"
	"github.com/Fepozopo/pixedit/pkg/prompt"
	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

// RequestIDHeader carries the per-request id.
const RequestIDHeader = "X-Request-ID"

// Options configures New.
type Options struct {
	// Tokens enables bearer authentication on /api routes when non-nil.
	Tokens    *Tokens
	BrushSize float64
	Logger    *logging.Logger
}

// Server routes HTTP requests to an editor.
type Server struct {
	ed     *editor.Editor
	tokens *Tokens
	brush  float64
	log    *logging.Logger
	engine *gin.Engine
}

// Response is the JSON envelope for every reply except binary images.
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// EditResponse is returned by POST /api/edit.
type EditResponse struct {
	Response
	*editor.Result
	Image           string         `json:"image"`
	AppliedSettings []stdimg.Entry `json:"appliedSettings"`
	FileName        string         `json:"fileName"`
}

// AnalyzeResponse is returned by POST /api/analyze.
type AnalyzeResponse struct {
	Response
	Format   editor.Format   `json:"format"`
	Analysis editor.Analysis `json:"analysis"`
}

// New builds the router.
func New(ed *editor.Editor, opts Options) *Server {
	s := &Server{ed: ed, tokens: opts.Tokens, brush: opts.BrushSize, log: opts.Logger}
	if s.log == nil {
		s.log = logging.Discard()
	}
	s.log = s.log.WithTag("server")
	if s.brush == 0 {
		s.brush = mask.DefaultBrushSize
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestID, s.cors)
	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	if s.tokens != nil {
		api.Use(s.auth)
	}
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/edges", s.handleEdges)
	api.POST("/edit", s.handleEdit)
	api.POST("/mask", s.handleMask)
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	s.engine = r
	return s
}

// Handler returns the http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", logging.Fields{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Set(RequestIDHeader, id)
	c.Header(RequestIDHeader, id)
	start := time.Now()
	c.Next()
	s.log.Debug("request", logging.Fields{
		"id":     id,
		"method": c.Request.Method,
		"path":   c.FullPath(),
		"status": c.Writer.Status(),
		"ms":     time.Since(start).Milliseconds(),
	})
}

func (s *Server) cors(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "content-type, authorization, x-request-id")
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Next()
}

func (s *Server) auth(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.Next()
		return
	}
	h := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		s.fail(c, ErrUnauthorized)
		return
	}
	sub, err := s.tokens.Verify(token)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Set("subject", sub)
	c.Next()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "metrics": s.ed.Metrics()})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	buf, f, err := s.readImage(c, "image")
	if err != nil {
		s.fail(c, err)
		return
	}
	a, err := s.ed.Analyze(buf)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, AnalyzeResponse{Response: s.ok(c), Format: f, Analysis: a})
}

func (s *Server) handleEdges(c *gin.Context) {
	buf, _, err := s.readImage(c, "image")
	if err != nil {
		s.fail(c, err)
		return
	}
	edges, err := stdimg.DetectEdges(buf)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.png(c, edges)
}

func (s *Server) handleEdit(c *gin.Context) {
	buf, _, err := s.readImage(c, "image")
	if err != nil {
		s.fail(c, err)
		return
	}
	promptText := c.PostForm("prompt")

	var res *editor.Result
	if _, err := c.FormFile("mask"); err == nil {
		m, _, err := s.readImage(c, "mask")
		if err != nil {
			s.fail(c, err)
			return
		}
		res, err = s.ed.EditMasked(c.Request.Context(), buf, m, promptText)
		if err != nil {
			s.fail(c, err)
			return
		}
	} else {
		res, err = s.ed.Edit(c.Request.Context(), buf, promptText)
		if err != nil {
			s.fail(c, err)
			return
		}
	}

	uri, err := editor.DataURI(res.Image)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, EditResponse{
		Response:        s.ok(c),
		Result:          res,
		Image:           uri,
		AppliedSettings: res.Settings.Entries(),
		FileName:        fmt.Sprintf("edited_%s.png", res.ID),
	})
}

func (s *Server) handleMask(c *gin.Context) {
	buf, _, err := s.readImage(c, "image")
	if err != nil {
		s.fail(c, err)
		return
	}
	session := mask.Session{BrushSize: s.brush}
	if raw := c.PostForm("strokes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &session.Paths); err != nil {
			s.fail(c, badRequest(fmt.Errorf("strokes: %w", err)))
			return
		}
	}
	for field, dst := range map[string]*float64{
		"display_width":  &session.DisplayWidth,
		"display_height": &session.DisplayHeight,
		"brush_size":     &session.BrushSize,
	} {
		if raw := c.PostForm(field); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				s.fail(c, badRequest(fmt.Errorf("%s: %w", field, err)))
				return
			}
			*dst = v
		}
	}
	m, err := mask.Render(buf, session)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.png(c, m)
}

func (s *Server) readImage(c *gin.Context, field string) (*stdimg.Buffer, editor.Format, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, editor.FormatUnknown, badRequest(fmt.Errorf("missing %s file", field))
	}
	if max := s.ed.Limits().MaxFileSize; max > 0 && fh.Size > max {
		return nil, editor.FormatUnknown, fmt.Errorf("%w: %d bytes", editor.ErrTooLarge, fh.Size)
	}
	data, err := readFile(fh)
	if err != nil {
		return nil, editor.FormatUnknown, err
	}
	return s.ed.Decode(data)
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) png(c *gin.Context, buf *stdimg.Buffer) {
	data, err := editor.EncodePNG(buf)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (s *Server) ok(c *gin.Context) Response {
	return Response{Success: true, RequestID: c.GetString(RequestIDHeader)}
}

type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error { return badRequestError{err} }

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	var br badRequestError
	switch {
	case errors.As(err, &br),
		errors.Is(err, editor.ErrEmptyPrompt),
		errors.Is(err, stdimg.ErrInvalidSetting),
		errors.Is(err, stdimg.ErrDimensionMismatch),
		errors.Is(err, mask.ErrInvalidDisplaySize):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, prompt.ErrBlockedPrompt):
		return http.StatusUnprocessableEntity
	case errors.Is(err, editor.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, editor.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	fields := logging.Fields{"id": c.GetString(RequestIDHeader), "status": status, "err": err}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", fields)
	} else {
		s.log.Info("request rejected", fields)
	}
	c.AbortWithStatusJSON(status, Response{Success: false, Message: err.Error(), RequestID: c.GetString(RequestIDHeader)})
}
