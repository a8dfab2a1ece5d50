// Package fleet 舰队模型：布置校验、命中记录、沉没判定与棋盘重建。
package fleet

import "github.com/wfunc/battleship/internal/game/grid"

// Fleet 同一玩家拥有的全部舰船
type Fleet []*Ship

// ShipAt 返回占据该坐标的舰船。布置时保证坐标在舰队内唯一，因此至多一艘。
func (f Fleet) ShipAt(p grid.Position) *Ship {
	for _, s := range f {
		if s.Occupies(p) {
			return s
		}
	}
	return nil
}

// AllSunk 舰队是否全部沉没，空舰队返回 false
func (f Fleet) AllSunk() bool {
	if len(f) == 0 {
		return false
	}
	for _, s := range f {
		if !s.IsSunk {
			return false
		}
	}
	return true
}

// TotalHits 舰队累计被命中格数
func (f Fleet) TotalHits() int {
	total := 0
	for _, s := range f {
		total += len(s.Hits)
	}
	return total
}

// SunkCount 已沉没舰船数
func (f Fleet) SunkCount() int {
	n := 0
	for _, s := range f {
		if s.IsSunk {
			n++
		}
	}
	return n
}

// Occupied 舰队占据的全部坐标
func (f Fleet) Occupied() map[grid.Position]string {
	occupied := make(map[grid.Position]string)
	for _, s := range f {
		for _, p := range s.Positions {
			occupied[p] = s.Name
		}
	}
	return occupied
}

// Clone 深拷贝
func (f Fleet) Clone() Fleet {
	if f == nil {
		return Fleet{}
	}
	c := make(Fleet, len(f))
	for i, s := range f {
		c[i] = s.Clone()
	}
	return c
}
