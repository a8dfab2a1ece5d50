package fleet

import (
	apperrors "github.com/wfunc/battleship/internal/errors"
	"github.com/wfunc/battleship/internal/game/grid"
)

// Placement 单艘舰船的布置请求
type Placement struct {
	Name      string          `json:"ship_name"`
	Positions []grid.Position `json:"positions"`
}

// ClassicShips 经典舰船目录，关闭自定义舰船时只允许这些名称和长度
var ClassicShips = map[string]int{
	"Carrier":    5,
	"Battleship": 4,
	"Cruiser":    3,
	"Submarine":  3,
	"Destroyer":  2,
}

// Rules 布置规则
type Rules struct {
	BoardSize   int
	AllowCustom bool
}

// ValidatePlacement 校验候选坐标：非空、不越界、不重复、不与已有舰队重叠
func ValidatePlacement(candidate []grid.Position, existing Fleet, boardSize int) error {
	if len(candidate) == 0 {
		return apperrors.New(apperrors.ErrInvalidPlacement, "舰船至少占据一格")
	}

	occupied := existing.Occupied()
	seen := make(map[grid.Position]struct{}, len(candidate))
	for _, p := range candidate {
		if !grid.IsValid(p, boardSize) {
			return apperrors.Newf(apperrors.ErrInvalidPlacement, "坐标 %s 超出棋盘", p)
		}
		if _, dup := seen[p]; dup {
			return apperrors.Newf(apperrors.ErrInvalidPlacement, "坐标 %s 重复", p)
		}
		if owner, taken := occupied[p]; taken {
			return apperrors.Newf(apperrors.ErrInvalidPlacement, "坐标 %s 已被 %s 占据", p, owner)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// ValidateBatch 校验一次布置请求中的全部舰船。
// 每艘舰船同时与已有舰队和同一请求中靠前的舰船比较，任何一艘失败则整批拒绝。
func ValidateBatch(requests []Placement, existing Fleet, rules Rules) error {
	if len(requests) == 0 {
		return apperrors.New(apperrors.ErrInvalidPlacement, "舰船列表为空")
	}

	pending := append(Fleet{}, existing...)
	for _, req := range requests {
		if req.Name == "" {
			return apperrors.New(apperrors.ErrInvalidPlacement, "舰船名称不能为空")
		}
		if !rules.AllowCustom {
			size, ok := ClassicShips[req.Name]
			if !ok {
				return apperrors.Newf(apperrors.ErrInvalidPlacement, "不支持自定义舰船: %s", req.Name)
			}
			if size != len(req.Positions) {
				return apperrors.Newf(apperrors.ErrInvalidPlacement, "%s 需要 %d 格，实际 %d 格", req.Name, size, len(req.Positions))
			}
		}
		if err := ValidatePlacement(req.Positions, pending, rules.BoardSize); err != nil {
			return apperrors.Wrap(err, apperrors.ErrInvalidPlacement, req.Name)
		}
		pending = append(pending, &Ship{Name: req.Name, Positions: req.Positions})
	}
	return nil
}

// Build 按请求创建舰船，调用前必须先通过 ValidateBatch
func Build(requests []Placement) []*Ship {
	ships := make([]*Ship, 0, len(requests))
	for _, req := range requests {
		ships = append(ships, NewShip(req.Name, req.Positions))
	}
	return ships
}
