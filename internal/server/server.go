// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the search engine and history store over HTTP.
// Authentication and workspace membership are resolved upstream; the
// server trusts the caller identity header and validates its shape only.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scholaros/search-service/internal/history"
	"github.com/scholaros/search-service/internal/search"
	"github.com/scholaros/search-service/pkg/types"
)

// userIDKey is the gin context key the auth middleware stores the caller
// id under.
const userIDKey = "user_id"

// Server wires the engine, the history store, and the async recorder
// behind the HTTP API.
type Server struct {
	engine   *search.Engine
	history  *history.Store
	recorder *history.Recorder
	logger   *slog.Logger
}

// New builds a server. A nil logger falls back to slog.Default.
func New(engine *search.Engine, historyStore *history.Store, recorder *history.Recorder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:   engine,
		history:  historyStore,
		recorder: recorder,
		logger:   logger,
	}
}

// Router assembles the route table.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", s.requireUser)
	api.GET("/search", s.handleSearch)
	api.GET("/search/history", s.handleHistoryList)
	api.POST("/search/history", s.handleHistoryInsert)
	api.DELETE("/search/history", s.handleHistoryClear)

	return r
}

// requireUser resolves the already-authorized caller identity from the
// X-User-ID header. Requests without a well-formed id are rejected before
// any fetch work begins.
func (s *Server) requireUser(c *gin.Context) {
	raw := c.GetHeader("X-User-ID")
	id, err := uuid.Parse(raw)
	if raw == "" || err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthenticated",
			"message": "a valid X-User-ID header is required",
		})
		return
	}
	c.Set(userIDKey, id.String())
	c.Next()
}

func callerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func (s *Server) handleSearch(c *gin.Context) {
	req := search.Request{
		Query:   c.Query("q"),
		Context: c.Query("context"),
	}

	if raw := c.Query("types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			t, err := types.ParseResultType(strings.TrimSpace(part))
			if err != nil {
				badRequest(c, err.Error())
				return
			}
			req.Types = append(req.Types, t)
		}
	}

	workspaceID, ok := optionalUUID(c, "workspace_id")
	if !ok {
		return
	}
	req.WorkspaceID = workspaceID

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		req.Limit = limit
	}

	scope := search.Scope{UserID: callerID(c), WorkspaceID: workspaceID}
	out, err := s.engine.Search(c.Request.Context(), req, scope)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrInvalidQuery):
			badRequest(c, err.Error())
		case c.Request.Context().Err() != nil:
			// Client went away; nothing useful to send.
			c.Abort()
		default:
			s.logger.Error("search failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		}
		return
	}

	// Record the submission without blocking the response.
	s.recorder.Record(types.SearchHistoryEntry{
		UserID:      scope.UserID,
		WorkspaceID: workspaceID,
		Query:       req.Query,
		Source:      types.HistorySourceQuickSearch,
	})

	c.JSON(http.StatusOK, gin.H{
		"results": out.Results,
		"grouped": out.Grouped,
		"total":   out.Total,
		"query":   out.Query,
		"limit":   out.Limit,
	})
}

func (s *Server) handleHistoryList(c *gin.Context) {
	workspaceID, ok := optionalUUID(c, "workspace_id")
	if !ok {
		return
	}

	opts := history.RecentOptions{WorkspaceID: workspaceID}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		opts.Limit = limit
	}
	if raw := c.Query("selected_only"); raw != "" {
		selectedOnly, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "selected_only must be a boolean")
			return
		}
		opts.SelectedOnly = selectedOnly
	}

	recents, err := s.history.Recent(c.Request.Context(), callerID(c), opts)
	if err != nil {
		if errors.Is(err, search.ErrInvalidQuery) {
			badRequest(c, err.Error())
			return
		}
		s.logger.Error("history read failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	if recents == nil {
		recents = []types.RecentSearch{}
	}

	c.JSON(http.StatusOK, gin.H{"history": recents, "total": len(recents)})
}

type insertHistoryRequest struct {
	Query       string `json:"query"`
	WorkspaceID string `json:"workspace_id"`
	ResultType  string `json:"result_type"`
	ResultID    string `json:"result_id"`
	ResultTitle string `json:"result_title"`
	Source      string `json:"source"`
	Selected    bool   `json:"selected"`
}

func (s *Server) handleHistoryInsert(c *gin.Context) {
	var req insertHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.WorkspaceID != "" {
		if _, err := uuid.Parse(req.WorkspaceID); err != nil {
			badRequest(c, "workspace_id must be a UUID")
			return
		}
	}

	entry := types.SearchHistoryEntry{
		UserID:      callerID(c),
		WorkspaceID: req.WorkspaceID,
		Query:       req.Query,
		ResultType:  types.ResultType(req.ResultType),
		ResultID:    req.ResultID,
		ResultTitle: req.ResultTitle,
		Source:      types.HistorySource(req.Source),
		Selected:    req.Selected,
	}

	if err := s.history.Record(c.Request.Context(), entry); err != nil {
		if errors.Is(err, search.ErrInvalidQuery) {
			badRequest(c, err.Error())
			return
		}
		s.logger.Error("history insert failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}

func (s *Server) handleHistoryClear(c *gin.Context) {
	workspaceID, ok := optionalUUID(c, "workspace_id")
	if !ok {
		return
	}

	deleted, err := s.history.Clear(c.Request.Context(), callerID(c), workspaceID)
	if err != nil {
		s.logger.Error("history clear failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}

// optionalUUID reads a UUID query parameter, writing a validation error
// and returning false when it is present but malformed.
func optionalUUID(c *gin.Context, name string) (string, bool) {
	raw := c.Query(name)
	if raw == "" {
		return "", true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, name+" must be a UUID")
		return "", false
	}
	return id.String(), true
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_query", "message": message})
}
