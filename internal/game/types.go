package game

import (
	"time"

	"github.com/google/uuid"
	apperrors "github.com/wfunc/battleship/internal/errors"
	"github.com/wfunc/battleship/internal/game/achievement"
	"github.com/wfunc/battleship/internal/game/combat"
	"github.com/wfunc/battleship/internal/game/fleet"
	"github.com/wfunc/battleship/internal/game/grid"
)

// 玩家人数范围
const (
	MinPlayers = 2
	MaxPlayers = 4
)

// GameConfig 游戏配置
type GameConfig struct {
	BoardSize        int                `json:"board_size"`
	MaxPlayers       int                `json:"max_players"`
	AllowCustomShips bool               `json:"allow_custom_ships"`
	InitialSpells    []combat.SpellType `json:"initial_spells"`
}

// DefaultGameConfig 默认配置：10x10 棋盘，两名玩家，初始法术 nuke + sonar
func DefaultGameConfig() GameConfig {
	return GameConfig{
		BoardSize:        10,
		MaxPlayers:       2,
		AllowCustomShips: true,
		InitialSpells:    []combat.SpellType{combat.SpellNuke, combat.SpellSonar},
	}
}

// Validate 校验配置边界
func (c GameConfig) Validate() error {
	if !grid.IsValidSize(c.BoardSize) {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "board_size 必须在 %d-%d 之间", grid.MinBoardSize, grid.MaxBoardSize)
	}
	if c.MaxPlayers < MinPlayers || c.MaxPlayers > MaxPlayers {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "max_players 必须在 %d-%d 之间", MinPlayers, MaxPlayers)
	}
	for _, s := range c.InitialSpells {
		if !s.IsValid() {
			return apperrors.Newf(apperrors.ErrInvalidConfig, "未知的初始法术: %s", s)
		}
	}
	return nil
}

// Player 玩家
type Player struct {
	ID              string                     `json:"id"`
	Name            string                     `json:"name"`
	BoardSize       int                        `json:"board_size"`
	Board           fleet.Board                `json:"board"`
	Ships           fleet.Fleet                `json:"ships"`
	Spells          combat.Loadout             `json:"spells"`
	Achievements    []*achievement.Achievement `json:"achievements"`
	IsReady         bool                       `json:"is_ready"`
	ConsecutiveHits int                        `json:"consecutive_hits"`
	Actions         int                        `json:"actions"`    // 本局已结算的攻击与施法次数
	HitsTaken       int                        `json:"hits_taken"` // 舰队累计被命中格数，修复不回退
}

// NewPlayer 创建玩家
func NewPlayer(name string, cfg GameConfig) *Player {
	return &Player{
		ID:           uuid.New().String(),
		Name:         name,
		BoardSize:    cfg.BoardSize,
		Board:        fleet.NewBoard(cfg.BoardSize),
		Ships:        fleet.Fleet{},
		Spells:       combat.NewLoadout(cfg.InitialSpells),
		Achievements: []*achievement.Achievement{},
	}
}

// RefreshBoard 由舰船状态重建棋盘，舰船或命中变化后必须调用
func (p *Player) RefreshBoard() {
	p.Board = fleet.RecomputeBoard(p.BoardSize, p.Ships)
}

// Clone 深拷贝
func (p *Player) Clone() *Player {
	c := *p
	c.Board = p.Board.Clone()
	c.Ships = p.Ships.Clone()
	c.Spells = p.Spells.Clone()
	c.Achievements = achievement.Clone(p.Achievements)
	return &c
}

// Game 游戏聚合
type Game struct {
	ID                 string     `json:"id"`
	Config             GameConfig `json:"config"`
	Players            []*Player  `json:"players"`
	CurrentPlayerIndex int        `json:"current_player_index"`
	Status             GameStatus `json:"status"`
	WinnerID           string     `json:"winner_id,omitempty"`
	Turns              int        `json:"turns"`
	CreatedAt          time.Time  `json:"created_at"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`
}

// NewGame 创建处于 setup 状态的空游戏
func NewGame(cfg GameConfig, now time.Time) *Game {
	return &Game{
		ID:        uuid.New().String(),
		Config:    cfg,
		Players:   []*Player{},
		Status:    StatusSetup,
		CreatedAt: now,
	}
}

// Player 按ID查找玩家
func (g *Game) Player(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentPlayer 当前行动玩家
func (g *Game) CurrentPlayer() *Player {
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.Players) {
		return nil
	}
	return g.Players[g.CurrentPlayerIndex]
}

// advanceTurn 轮转到下一位玩家
func (g *Game) advanceTurn() {
	if len(g.Players) == 0 {
		return
	}
	g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(g.Players)
	g.Turns++
}

// Clone 深拷贝，返回给调用方的快照不与内部状态共享内存
func (g *Game) Clone() *Game {
	c := *g
	c.Config.InitialSpells = append([]combat.SpellType(nil), g.Config.InitialSpells...)
	c.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		c.Players[i] = p.Clone()
	}
	if g.FinishedAt != nil {
		t := *g.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// ReadyResult 准备结果
type ReadyResult struct {
	PlayerID   string     `json:"player_id"`
	GameStatus GameStatus `json:"game_status"`
}

// ActionResult 攻击或施法结果
type ActionResult struct {
	Hit               bool                       `json:"hit"`
	SunkShip          string                     `json:"sunk_ship,omitempty"`
	SunkShips         []string                   `json:"sunk_ships,omitempty"`
	HitCount          int                        `json:"hit_count"`
	AchievementEarned *achievement.Achievement   `json:"achievement_earned,omitempty"`
	Achievements      []*achievement.Achievement `json:"achievements,omitempty"`
	AffectedPositions []grid.Position            `json:"affected_positions"`
	GameStatus        GameStatus                 `json:"game_status"`
	WinnerID          string                     `json:"winner_id,omitempty"`
	NextPlayerID      string                     `json:"next_player_id,omitempty"`
}

// SpellRequest 施法请求
type SpellRequest struct {
	SpellType      combat.SpellType
	TargetPosition grid.Position
	Axis           grid.Axis
}
