package game

import (
	"strings"
	"time"

	apperrors "github.com/wfunc/battleship/internal/errors"
	"github.com/wfunc/battleship/internal/game/achievement"
	"github.com/wfunc/battleship/internal/game/combat"
	"github.com/wfunc/battleship/internal/game/fleet"
	"github.com/wfunc/battleship/internal/game/grid"
)

// Engine 对局规则引擎。
// 所有方法直接修改传入的 Game，调用方负责持有该局的写锁。
type Engine struct {
	sm        *StateMachine
	evaluator *achievement.Evaluator
	now       func() time.Time
}

// NewEngine 创建规则引擎，clock 为 nil 时使用 time.Now
func NewEngine(clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		sm:        NewStateMachine(),
		evaluator: achievement.NewEvaluator(clock),
		now:       clock,
	}
}

// Join 加入游戏。人数上限先于状态检查
func (e *Engine) Join(g *Game, name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.New(apperrors.ErrInvalidParam, "player_name 不能为空")
	}
	if len(g.Players) >= g.Config.MaxPlayers {
		return nil, apperrors.Newf(apperrors.ErrGameFull, "最多 %d 名玩家", g.Config.MaxPlayers)
	}
	if g.Status != StatusSetup {
		return nil, apperrors.New(apperrors.ErrGameAlreadyStarted, string(g.Status))
	}

	player := NewPlayer(name, g.Config)
	g.Players = append(g.Players, player)
	return player, nil
}

// PlaceShips 布置舰船，整批校验通过后才写入
func (e *Engine) PlaceShips(g *Game, playerID string, requests []fleet.Placement) ([]*fleet.Ship, error) {
	player, err := e.player(g, playerID)
	if err != nil {
		return nil, err
	}
	if g.Status != StatusSetup {
		return nil, apperrors.New(apperrors.ErrGameAlreadyStarted, string(g.Status))
	}

	rules := fleet.Rules{BoardSize: player.BoardSize, AllowCustom: g.Config.AllowCustomShips}
	if err := fleet.ValidateBatch(requests, player.Ships, rules); err != nil {
		return nil, err
	}

	ships := fleet.Build(requests)
	player.Ships = append(player.Ships, ships...)
	player.RefreshBoard()
	return ships, nil
}

// SetReady 玩家准备，全部准备且人数足够时开局
func (e *Engine) SetReady(g *Game, playerID string) (*ReadyResult, error) {
	player, err := e.player(g, playerID)
	if err != nil {
		return nil, err
	}
	if g.Status != StatusSetup {
		return nil, apperrors.New(apperrors.ErrGameAlreadyStarted, string(g.Status))
	}
	if len(player.Ships) == 0 {
		return nil, apperrors.New(apperrors.ErrNoShipsPlaced, player.ID)
	}

	player.IsReady = true
	if e.sm.CanTransition(g, EventStart) {
		if err := e.sm.Trigger(g, EventStart); err != nil {
			return nil, err
		}
		g.CurrentPlayerIndex = 0
	}

	return &ReadyResult{PlayerID: player.ID, GameStatus: g.Status}, nil
}

// Attack 对目标玩家的单点攻击
func (e *Engine) Attack(g *Game, attackerID, targetID string, pos grid.Position) (*ActionResult, error) {
	attacker, target, err := e.prepareAction(g, attackerID, targetID, false)
	if err != nil {
		return nil, err
	}
	if !grid.IsValid(pos, target.BoardSize) {
		return nil, apperrors.Newf(apperrors.ErrInvalidPosition, "坐标 %s 超出棋盘", pos)
	}

	firstAction := attacker.Actions == 0
	res := combat.Attack(target.Ships, pos)
	target.HitsTaken += res.HitCount
	target.RefreshBoard()

	if res.Hit {
		attacker.ConsecutiveHits++
	} else {
		attacker.ConsecutiveHits = 0
	}

	outcome := achievement.Outcome{
		PlayerID:        attacker.ID,
		Damaging:        true,
		FirstAction:     firstAction,
		NewHits:         res.HitCount,
		TargetTotalHits: target.HitsTaken,
		ConsecutiveHits: attacker.ConsecutiveHits,
		TargetDefeated:  target.Ships.AllSunk(),
		OwnHitsTaken:    attacker.HitsTaken,
	}
	return e.settle(g, attacker, target, res, outcome)
}

// CastSpell 施放法术。修复作用于施法者自己，忽略 targetID
func (e *Engine) CastSpell(g *Game, casterID, targetID string, req SpellRequest) (*ActionResult, error) {
	if !req.SpellType.IsValid() {
		return nil, apperrors.Newf(apperrors.ErrInvalidSpell, "未知的法术: %s", req.SpellType)
	}
	selfCast := req.SpellType == combat.SpellRepair

	caster, target, err := e.prepareAction(g, casterID, targetID, selfCast)
	if err != nil {
		return nil, err
	}

	board := target
	if selfCast {
		board = caster
	}
	if !grid.IsValid(req.TargetPosition, board.BoardSize) {
		return nil, apperrors.Newf(apperrors.ErrInvalidPosition, "坐标 %s 超出棋盘", req.TargetPosition)
	}
	axis := req.Axis
	if axis == "" {
		axis = grid.AxisRow
	}

	if err := caster.Spells.Consume(req.SpellType); err != nil {
		return nil, err
	}

	firstAction := caster.Actions == 0
	res, err := combat.Resolve(combat.Cast{
		Spell:     req.SpellType,
		Target:    target.Ships,
		Own:       caster.Ships,
		Position:  req.TargetPosition,
		BoardSize: board.BoardSize,
		Axis:      axis,
	})
	if err != nil {
		return nil, err
	}

	switch {
	case req.SpellType.Damaging():
		target.HitsTaken += res.HitCount
		target.RefreshBoard()
	case selfCast:
		caster.RefreshBoard()
	}

	outcome := achievement.Outcome{
		PlayerID:        caster.ID,
		Damaging:        req.SpellType.Damaging(),
		Cast:            true,
		FirstAction:     firstAction,
		NewHits:         res.HitCount,
		TargetTotalHits: target.HitsTaken,
		ConsecutiveHits: caster.ConsecutiveHits,
		TargetDefeated:  req.SpellType.Damaging() && target.Ships.AllSunk(),
		OwnHitsTaken:    caster.HitsTaken,
		ExhaustedSpells: len(caster.Spells.ExhaustedTypes()),
	}
	return e.settle(g, caster, target, res, outcome)
}

// prepareAction 校验行动前置条件，不修改任何状态。
// selfCast 为 true 时目标即行动者本人
func (e *Engine) prepareAction(g *Game, actorID, targetID string, selfCast bool) (actor, target *Player, err error) {
	if g.Status != StatusInProgress {
		return nil, nil, apperrors.New(apperrors.ErrGameNotInProgress, string(g.Status))
	}
	actor, err = e.player(g, actorID)
	if err != nil {
		return nil, nil, err
	}
	if current := g.CurrentPlayer(); current == nil || current.ID != actor.ID {
		return nil, nil, apperrors.New(apperrors.ErrNotYourTurn, actor.ID)
	}
	if selfCast {
		return actor, actor, nil
	}

	target, err = e.player(g, targetID)
	if err != nil {
		return nil, nil, err
	}
	if target.ID == actor.ID {
		return nil, nil, apperrors.New(apperrors.ErrInvalidTarget, "不能攻击自己")
	}
	return actor, target, nil
}

// settle 发放成就、轮转回合、判定胜负
func (e *Engine) settle(g *Game, actor, target *Player, res *combat.Result, outcome achievement.Outcome) (*ActionResult, error) {
	actor.Actions++
	earned := e.evaluator.Evaluate(&actor.Achievements, outcome)

	if outcome.TargetDefeated && target.ID != actor.ID {
		if err := e.sm.Trigger(g, EventFinish); err != nil {
			return nil, err
		}
		g.WinnerID = actor.ID
		finishedAt := e.now()
		g.FinishedAt = &finishedAt
	}
	g.advanceTurn()

	result := &ActionResult{
		Hit:               res.Hit,
		SunkShip:          res.SunkShip,
		SunkShips:         res.SunkShips,
		HitCount:          res.HitCount,
		AffectedPositions: res.AffectedPositions,
		GameStatus:        g.Status,
		WinnerID:          g.WinnerID,
	}
	if len(earned) > 0 {
		result.Achievements = achievement.Clone(earned)
		result.AchievementEarned = result.Achievements[len(result.Achievements)-1]
	}
	if g.Status == StatusInProgress {
		result.NextPlayerID = g.CurrentPlayer().ID
	}
	return result, nil
}

// player 按ID查找玩家
func (e *Engine) player(g *Game, id string) (*Player, error) {
	p := g.Player(id)
	if p == nil {
		return nil, apperrors.New(apperrors.ErrPlayerNotFound, id)
	}
	return p, nil
}
