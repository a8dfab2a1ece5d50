package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/battleship/internal/game"
	"github.com/wfunc/battleship/internal/game/achievement"
	"github.com/wfunc/battleship/internal/game/combat"
	"github.com/wfunc/battleship/internal/game/fleet"
	"github.com/wfunc/battleship/internal/game/grid"
	"go.uber.org/zap"
)

// GameHandler 对局处理器
type GameHandler struct {
	service *game.Service
	logger  *zap.Logger
}

// NewGameHandler 创建对局处理器
func NewGameHandler(service *game.Service, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		service: service,
		logger:  logger,
	}
}

// CreateGameRequest 创建对局请求，config 缺省时使用服务默认配置
type CreateGameRequest struct {
	Config *game.GameOptions `json:"config"`
}

// JoinGameRequest 加入对局请求
type JoinGameRequest struct {
	PlayerName string `json:"player_name"`
}

// PlaceShipsRequest 布置舰船请求
type PlaceShipsRequest struct {
	Ships []fleet.Placement `json:"ships"`
}

// PlaceShipsResponse 布置舰船响应
type PlaceShipsResponse struct {
	Message string        `json:"message"`
	Ships   []*fleet.Ship `json:"ships"`
}

// ReadyResponse 准备响应
type ReadyResponse struct {
	Message    string          `json:"message"`
	PlayerID   string          `json:"player_id"`
	GameStatus game.GameStatus `json:"game_status"`
}

// AttackQuery 普通攻击查询参数
type AttackQuery struct {
	AttackerID string `form:"attacker_id" binding:"required"`
	TargetID   string `form:"target_id" binding:"required"`
}

// AttackRequest 普通攻击请求
type AttackRequest struct {
	Position *grid.Position `json:"position" binding:"required"`
}

// SpellQuery 施法查询参数
type SpellQuery struct {
	CasterID string `form:"caster_id" binding:"required"`
	TargetID string `form:"target_id" binding:"required"`
}

// SpellRequest 施法请求，axis 只对空袭有效
type SpellRequest struct {
	SpellType      string         `json:"spell_type" binding:"required"`
	TargetPosition *grid.Position `json:"target_position" binding:"required"`
	Axis           string         `json:"axis"`
}

// CreateGame 创建对局
func (h *GameHandler) CreateGame(c *gin.Context) {
	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	g, err := h.service.CreateGame(c.Request.Context(), req.Config)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// ListGames 列出对局
func (h *GameHandler) ListGames(c *gin.Context) {
	games, err := h.service.ListGames(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

// GetGame 获取对局详情
func (h *GameHandler) GetGame(c *gin.Context) {
	g, err := h.service.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// DeleteGame 删除对局
func (h *GameHandler) DeleteGame(c *gin.Context) {
	if err := h.service.DeleteGame(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Game deleted successfully"})
}

// JoinGame 加入对局
func (h *GameHandler) JoinGame(c *gin.Context) {
	var req JoinGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	player, err := h.service.JoinGame(c.Request.Context(), c.Param("id"), req.PlayerName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

// PlaceShips 布置舰船
func (h *GameHandler) PlaceShips(c *gin.Context) {
	var req PlaceShipsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	ships, err := h.service.PlaceShips(c.Request.Context(), c.Param("id"), c.Param("player_id"), req.Ships)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PlaceShipsResponse{
		Message: "Ships placed successfully",
		Ships:   ships,
	})
}

// SetReady 玩家准备
func (h *GameHandler) SetReady(c *gin.Context) {
	result, err := h.service.SetReady(c.Request.Context(), c.Param("id"), c.Param("player_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ReadyResponse{
		Message:    "Player ready",
		PlayerID:   result.PlayerID,
		GameStatus: result.GameStatus,
	})
}

// GetAchievements 获取玩家成就
func (h *GameHandler) GetAchievements(c *gin.Context) {
	list, err := h.service.GetAchievements(c.Request.Context(), c.Param("id"), c.Param("player_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []*achievement.Achievement{}
	}
	c.JSON(http.StatusOK, list)
}

// Attack 普通攻击
func (h *GameHandler) Attack(c *gin.Context) {
	var query AttackQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	var req AttackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.service.Attack(c.Request.Context(), c.Param("id"), query.AttackerID, query.TargetID, *req.Position)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CastSpell 施放法术
func (h *GameHandler) CastSpell(c *gin.Context) {
	var query SpellQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	var req SpellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}
	spellType, err := combat.ParseSpellType(req.SpellType)
	if err != nil {
		respondError(c, err)
		return
	}
	axis, err := grid.ParseAxis(req.Axis)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.CastSpell(c.Request.Context(), c.Param("id"), query.CasterID, query.TargetID, game.SpellRequest{
		SpellType:      spellType,
		TargetPosition: *req.TargetPosition,
		Axis:           axis,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
