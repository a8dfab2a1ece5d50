package game

import (
	"context"
	"time"

	apperrors "github.com/wfunc/battleship/internal/errors"
	"github.com/wfunc/battleship/internal/game/achievement"
	"github.com/wfunc/battleship/internal/game/combat"
	"github.com/wfunc/battleship/internal/game/fleet"
	"github.com/wfunc/battleship/internal/game/grid"
	"go.uber.org/zap"
)

// GameOptions 创建游戏的可选参数，未填写的字段使用默认配置
type GameOptions struct {
	BoardSize        *int               `json:"board_size"`
	MaxPlayers       *int               `json:"max_players"`
	AllowCustomShips *bool              `json:"allow_custom_ships"`
	InitialSpells    []combat.SpellType `json:"initial_spells"`
}

// Apply 把选项合并到 base 上
func (o *GameOptions) Apply(base GameConfig) GameConfig {
	cfg := base
	cfg.InitialSpells = append([]combat.SpellType(nil), base.InitialSpells...)
	if o == nil {
		return cfg
	}
	if o.BoardSize != nil {
		cfg.BoardSize = *o.BoardSize
	}
	if o.MaxPlayers != nil {
		cfg.MaxPlayers = *o.MaxPlayers
	}
	if o.AllowCustomShips != nil {
		cfg.AllowCustomShips = *o.AllowCustomShips
	}
	if o.InitialSpells != nil {
		cfg.InitialSpells = append([]combat.SpellType{}, o.InitialSpells...)
	}
	return cfg
}

// Service 游戏服务（业务逻辑层）
type Service struct {
	store    Store
	engine   *Engine
	defaults GameConfig
	notifier Notifier
	archiver Archiver
	logger   *zap.Logger
	now      func() time.Time
}

// ServiceConfig 游戏服务配置
type ServiceConfig struct {
	Store    Store
	Defaults *GameConfig
	Notifier Notifier
	Archiver Archiver
	Logger   *zap.Logger
	Clock    func() time.Time
}

// NewService 创建游戏服务
func NewService(config *ServiceConfig) *Service {
	s := &Service{
		store:    config.Store,
		defaults: DefaultGameConfig(),
		notifier: config.Notifier,
		archiver: config.Archiver,
		logger:   config.Logger,
		now:      config.Clock,
	}
	if s.store == nil {
		s.store = NewMemoryStore()
	}
	if config.Defaults != nil {
		s.defaults = *config.Defaults
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.engine = NewEngine(s.now)
	return s
}

// CreateGame 创建游戏
func (s *Service) CreateGame(ctx context.Context, opts *GameOptions) (*Game, error) {
	cfg := opts.Apply(s.defaults)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := NewGame(cfg, s.now())
	snapshot := g.Clone()
	if err := s.store.Create(ctx, g); err != nil {
		return nil, err
	}

	s.logger.Info("创建游戏",
		zap.String("game_id", g.ID),
		zap.Int("board_size", cfg.BoardSize),
		zap.Int("max_players", cfg.MaxPlayers))
	return snapshot, nil
}

// ListGames 列出全部游戏
func (s *Service) ListGames(ctx context.Context) ([]*Game, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	games := make([]*Game, 0, len(sessions))
	for _, session := range sessions {
		games = append(games, session.Snapshot())
	}
	return games, nil
}

// GetGame 获取游戏快照
func (s *Service) GetGame(ctx context.Context, gameID string) (*Game, error) {
	session, err := s.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return session.Snapshot(), nil
}

// JoinGame 加入游戏
func (s *Service) JoinGame(ctx context.Context, gameID, playerName string) (*Player, error) {
	session, err := s.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var player *Player
	if _, err := session.Update(func(g *Game) error {
		p, err := s.engine.Join(g, playerName)
		if err != nil {
			return err
		}
		player = p.Clone()
		return nil
	}); err != nil {
		s.logger.Debug("加入游戏失败", zap.String("game_id", gameID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("玩家加入",
		zap.String("game_id", gameID),
		zap.String("player_id", player.ID),
		zap.String("player_name", player.Name))
	s.publish(gameID, NotifyPlayerJoined, map[string]interface{}{
		"player_id":   player.ID,
		"player_name": player.Name,
	})
	return player, nil
}

// PlaceShips 布置舰船
func (s *Service) PlaceShips(ctx context.Context, gameID, playerID string, requests []fleet.Placement) ([]*fleet.Ship, error) {
	session, err := s.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var ships []*fleet.Ship
	if _, err := session.Update(func(g *Game) error {
		placed, err := s.engine.PlaceShips(g, playerID, requests)
		if err != nil {
			return err
		}
		ships = fleet.Fleet(placed).Clone()
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("布置舰船",
		zap.String("game_id", gameID),
		zap.String("player_id", playerID),
		zap.Int("ships", len(ships)))
	s.publish(gameID, NotifyShipsPlaced, map[string]interface{}{
		"player_id":  playerID,
		"ship_count": len(ships),
	})
	return ships, nil
}

// SetReady 玩家准备
func (s *Service) SetReady(ctx context.Context, gameID, playerID string) (*ReadyResult, error) {
	session, err := s.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var result *ReadyResult
	snapshot, err := session.Update(func(g *Game) error {
		r, err := s.engine.SetReady(g, playerID)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("玩家准备",
		zap.String("game_id", gameID),
		zap.String("player_id", playerID),
		zap.String("status", string(result.GameStatus)))
	s.publish(gameID, NotifyPlayerReady, result)
	if result.GameStatus == StatusInProgress {
		s.logger.Info("对局开始", zap.String("game_id", gameID), zap.Int("players", len(snapshot.Players)))
		s.publish(gameID, NotifyGameStarted, map[string]interface{}{
			"current_player_id": snapshot.CurrentPlayer().ID,
		})
	}
	return result, nil
}

// Attack 普通攻击
func (s *Service) Attack(ctx context.Context, gameID, attackerID, targetID string, pos grid.Position) (*ActionResult, error) {
	return s.act(ctx, gameID, "attack", attackerID, targetID, func(g *Game) (*ActionResult, error) {
		return s.engine.Attack(g, attackerID, targetID, pos)
	})
}

// CastSpell 施放法术
func (s *Service) CastSpell(ctx context.Context, gameID, casterID, targetID string, req SpellRequest) (*ActionResult, error) {
	return s.act(ctx, gameID, string(req.SpellType), casterID, targetID, func(g *Game) (*ActionResult, error) {
		return s.engine.CastSpell(g, casterID, targetID, req)
	})
}

// act 在写锁内结算一次行动，锁释放后再推送与归档
func (s *Service) act(ctx context.Context, gameID, action, actorID, targetID string, fn func(g *Game) (*ActionResult, error)) (*ActionResult, error) {
	session, err := s.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var result *ActionResult
	snapshot, err := session.Update(func(g *Game) error {
		r, err := fn(g)
		result = r
		return err
	})
	if err != nil {
		s.logger.Debug("行动被拒绝",
			zap.String("game_id", gameID),
			zap.String("action", action),
			zap.String("actor_id", actorID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("行动结算",
		zap.String("game_id", gameID),
		zap.String("action", action),
		zap.String("actor_id", actorID),
		zap.String("target_id", targetID),
		zap.Bool("hit", result.Hit),
		zap.Int("hit_count", result.HitCount),
		zap.String("sunk_ship", result.SunkShip))
	for _, a := range result.Achievements {
		s.logger.Info("获得成就",
			zap.String("game_id", gameID),
			zap.String("player_id", a.PlayerID),
			zap.String("achievement", string(a.Type)))
	}

	// seq 为结算后的回合数，推送在锁外进行，客户端据此排序
	s.publish(gameID, NotifyTurnResolved, map[string]interface{}{
		"seq":       snapshot.Turns,
		"action":    action,
		"actor_id":  actorID,
		"target_id": targetID,
		"result":    result,
	})

	if result.GameStatus == StatusFinished {
		s.logger.Info("对局结束",
			zap.String("game_id", gameID),
			zap.String("winner_id", snapshot.WinnerID),
			zap.Int("turns", snapshot.Turns))
		s.publish(gameID, NotifyGameFinished, map[string]interface{}{
			"seq":       snapshot.Turns,
			"winner_id": snapshot.WinnerID,
			"turns":     snapshot.Turns,
		})
		s.archive(ctx, snapshot)
	}
	return result, nil
}

// GetAchievements 获取玩家成就
func (s *Service) GetAchievements(ctx context.Context, gameID, playerID string) ([]*achievement.Achievement, error) {
	session, err := s.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var list []*achievement.Achievement
	err = session.View(func(g *Game) error {
		p := g.Player(playerID)
		if p == nil {
			return apperrors.New(apperrors.ErrPlayerNotFound, playerID)
		}
		list = achievement.Clone(p.Achievements)
		return nil
	})
	return list, err
}

// DeleteGame 删除游戏，任何状态均可删除
func (s *Service) DeleteGame(ctx context.Context, gameID string) error {
	if err := s.store.Delete(ctx, gameID); err != nil {
		return err
	}
	s.logger.Info("删除游戏", zap.String("game_id", gameID))
	s.publish(gameID, NotifyGameDeleted, map[string]interface{}{"game_id": gameID})
	return nil
}

// publish 推送事件，未配置推送时忽略
func (s *Service) publish(gameID, eventType string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(gameID, eventType, payload)
}

// archive 归档失败只记录日志，不影响本次请求
func (s *Service) archive(ctx context.Context, g *Game) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.Archive(context.WithoutCancel(ctx), g); err != nil {
		s.logger.Error("归档对局失败", zap.String("game_id", g.ID), zap.Error(err))
		return
	}
	s.logger.Info("对局已归档", zap.String("game_id", g.ID))
}
