package fleet

import (
	"github.com/google/uuid"
	"github.com/wfunc/battleship/internal/game/grid"
)

// Ship 舰船，坐标在创建后固定
type Ship struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Positions []grid.Position `json:"positions"`
	Hits      []grid.Position `json:"hits"`
	IsSunk    bool            `json:"is_sunk"`
}

// NewShip 创建舰船
func NewShip(name string, positions []grid.Position) *Ship {
	return &Ship{
		ID:        uuid.New().String(),
		Name:      name,
		Positions: append([]grid.Position(nil), positions...),
		Hits:      []grid.Position{},
	}
}

// Occupies 舰船是否占据该坐标
func (s *Ship) Occupies(p grid.Position) bool {
	return grid.Contains(s.Positions, p)
}

// IsHitAt 该坐标是否已被击中
func (s *Ship) IsHitAt(p grid.Position) bool {
	return grid.Contains(s.Hits, p)
}

// RegisterHit 记录一次命中。
// 坐标不属于本舰或已被命中时不做任何修改，返回 newHit=false。
// sunkNow 仅在本次命中使舰船沉没时为 true。
func (s *Ship) RegisterHit(p grid.Position) (newHit, sunkNow bool) {
	if !s.Occupies(p) || s.IsHitAt(p) {
		return false, false
	}

	s.Hits = append(s.Hits, p)
	wasSunk := s.IsSunk
	s.IsSunk = len(s.Hits) == len(s.Positions)
	return true, s.IsSunk && !wasSunk
}

// ClearHit 移除一处命中记录（修复），沉没状态随之重新计算
func (s *Ship) ClearHit(p grid.Position) bool {
	for i, h := range s.Hits {
		if h == p {
			s.Hits = append(s.Hits[:i], s.Hits[i+1:]...)
			s.IsSunk = len(s.Positions) > 0 && len(s.Hits) == len(s.Positions)
			return true
		}
	}
	return false
}

// Remaining 未被命中的格数
func (s *Ship) Remaining() int {
	return len(s.Positions) - len(s.Hits)
}

// Clone 深拷贝
func (s *Ship) Clone() *Ship {
	c := *s
	c.Positions = append([]grid.Position(nil), s.Positions...)
	c.Hits = append([]grid.Position{}, s.Hits...)
	return &c
}
