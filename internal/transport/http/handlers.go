// Package http holds the plain REST handlers next to the websocket endpoint.
package http

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dkeye/CommentClash/internal/adapters/store"
	"github.com/dkeye/CommentClash/internal/app/orch"
	"github.com/dkeye/CommentClash/internal/core"
	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SessionNicknameKey is where the nickname lives in the cookie session.
const SessionNicknameKey = "nickname"

type NickRequest struct {
	Name string `json:"name"`
}

type NickResponse struct {
	Name string `json:"name"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// VideoVerifier checks the token on a signed video URL.
type VideoVerifier interface {
	Verify(filename, token string) error
}

type Handlers struct {
	Orch     *orch.Orchestrator
	Games    core.GameStore
	Videos   VideoVerifier
	VideoDir string
	Now      func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.Orch.ListRooms())
}

func (h *Handlers) GetRoom(c *gin.Context) {
	code := domain.ParseCode(c.Param("code"))
	gs, ok := h.Orch.GetGameState(c.Request.Context(), code)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: domain.ErrRoomNotFound.Error(), Code: domain.ErrorCode(domain.ErrRoomNotFound)})
		return
	}
	c.JSON(http.StatusOK, gs)
}

// GetGame returns the last durable checkpoint of a game.
func (h *Handlers) GetGame(c *gin.Context) {
	code := domain.ParseCode(c.Param("code"))
	room, err := h.Games.LoadGame(c.Request.Context(), code)
	switch {
	case errors.Is(err, store.ErrGameNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	case err != nil:
		log.Error().Err(err).Str("module", "transport.http").Str("code", string(code)).Msg("load game")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// SetNickname remembers the display name used when a socket does not send one.
func (h *Handlers) SetNickname(c *gin.Context) {
	var req NickRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "missing or invalid name"})
		return
	}
	name := domain.NormalizeName(req.Name)

	session := sessions.Default(c)
	session.Set(SessionNicknameKey, name)
	if err := session.Save(); err != nil {
		log.Error().Err(err).Str("module", "transport.http").Msg("save session")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
		return
	}
	c.JSON(http.StatusOK, NickResponse{Name: name})
}

func (h *Handlers) GetNickname(c *gin.Context) {
	name, _ := sessions.Default(c).Get(SessionNicknameKey).(string)
	c.JSON(http.StatusOK, NickResponse{Name: name})
}

// ServeVideo serves a clip once its signed URL token checks out.
func (h *Handlers) ServeVideo(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	if err := h.Videos.Verify(filename, c.Query("token")); err != nil {
		log.Info().Err(err).Str("module", "transport.http").Str("file", filename).Msg("video token rejected")
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid token"})
		return
	}
	c.File(filepath.Join(h.VideoDir, filename))
}
