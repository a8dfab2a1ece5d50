// Package combat 负责把一次攻击或法术作用到目标舰队上。
package combat

import (
	apperrors "github.com/wfunc/battleship/internal/errors"
	"github.com/wfunc/battleship/internal/game/fleet"
	"github.com/wfunc/battleship/internal/game/grid"
)

// 法术作用半径
const (
	NukeRadius  = 1
	SonarRadius = 2
)

// Result 单次结算结果
type Result struct {
	// Hit 对普通攻击表示确认命中；对范围法术表示施放成功（影响范围非空），
	// 不代表实际击中舰船；对声呐表示范围内存在舰船；对修复表示成功清除一处命中。
	Hit               bool            `json:"hit"`
	SunkShip          string          `json:"sunk_ship,omitempty"`
	SunkShips         []string        `json:"sunk_ships,omitempty"`
	HitCount          int             `json:"hit_count"`
	AffectedPositions []grid.Position `json:"affected_positions"`
}

// Attack 单点攻击
func Attack(target fleet.Fleet, p grid.Position) *Result {
	result := &Result{AffectedPositions: []grid.Position{p}}

	ship := target.ShipAt(p)
	if ship == nil {
		return result
	}

	newHit, sunk := ship.RegisterHit(p)
	if !newHit {
		return result
	}

	result.Hit = true
	result.HitCount = 1
	if sunk {
		result.SunkShip = ship.Name
		result.SunkShips = []string{ship.Name}
	}
	return result
}

// Nuke 以 center 为中心的 3x3 范围打击
func Nuke(target fleet.Fleet, center grid.Position, boardSize int) *Result {
	return strike(target, grid.SquareArea(center, NukeRadius, boardSize))
}

// Airstrike 沿整行或整列打击
func Airstrike(target fleet.Fleet, p grid.Position, boardSize int, axis grid.Axis) *Result {
	return strike(target, grid.LinePattern(p, boardSize, axis))
}

// Sonar 5x5 范围侦测，只读不修改任何状态
func Sonar(target fleet.Fleet, center grid.Position, boardSize int) *Result {
	result := &Result{AffectedPositions: []grid.Position{}}
	for _, p := range grid.SquareArea(center, SonarRadius, boardSize) {
		if target.ShipAt(p) != nil {
			result.Hit = true
			break
		}
	}
	return result
}

// Repair 清除己方舰船在 p 处的命中记录
func Repair(own fleet.Fleet, p grid.Position) *Result {
	result := &Result{AffectedPositions: []grid.Position{}}

	ship := own.ShipAt(p)
	if ship != nil && ship.ClearHit(p) {
		result.Hit = true
		result.AffectedPositions = []grid.Position{p}
	}
	return result
}

// strike 对范围内每一格分别结算，同一次施放可以击中多艘舰船
func strike(target fleet.Fleet, area []grid.Position) *Result {
	result := &Result{
		Hit:               len(area) > 0,
		AffectedPositions: area,
	}

	for _, p := range area {
		for _, ship := range target {
			newHit, sunk := ship.RegisterHit(p)
			if newHit {
				result.HitCount++
			}
			if sunk {
				result.SunkShips = append(result.SunkShips, ship.Name)
				result.SunkShip = ship.Name
			}
		}
	}
	return result
}

// Cast 施放参数
type Cast struct {
	Spell     SpellType
	Target    fleet.Fleet // 敌方舰队
	Own       fleet.Fleet // 施法者舰队，修复时使用
	Position  grid.Position
	BoardSize int
	Axis      grid.Axis
}

// Resolve 按法术类型分派结算
func Resolve(c Cast) (*Result, error) {
	switch c.Spell {
	case SpellNuke:
		return Nuke(c.Target, c.Position, c.BoardSize), nil
	case SpellSonar:
		return Sonar(c.Target, c.Position, c.BoardSize), nil
	case SpellAirstrike:
		return Airstrike(c.Target, c.Position, c.BoardSize, c.Axis), nil
	case SpellRepair:
		return Repair(c.Own, c.Position), nil
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidSpell, "未知的法术: %s", c.Spell)
	}
}
