package fleet

// CellState 格子状态
type CellState string

const (
	CellEmpty CellState = "empty"
	CellShip  CellState = "ship"
	CellHit   CellState = "hit"
	CellMiss  CellState = "miss"
	CellNuked CellState = "nuked"
)

// Board 显示用棋盘，按 board[y][x] 索引
type Board [][]CellState

// NewBoard 创建空棋盘
func NewBoard(size int) Board {
	board := make(Board, size)
	for y := range board {
		row := make([]CellState, size)
		for x := range row {
			row[x] = CellEmpty
		}
		board[y] = row
	}
	return board
}

// RecomputeBoard 由舰船和命中记录完整重建棋盘。
// 结果只取决于输入：命中格为 hit，未命中舰船格为 ship，其余为 empty。
func RecomputeBoard(size int, ships Fleet) Board {
	board := NewBoard(size)
	for _, s := range ships {
		for _, p := range s.Positions {
			if p.Y < 0 || p.Y >= size || p.X < 0 || p.X >= size {
				continue
			}
			if s.IsHitAt(p) {
				board[p.Y][p.X] = CellHit
			} else {
				board[p.Y][p.X] = CellShip
			}
		}
	}
	return board
}

// Clone 深拷贝
func (b Board) Clone() Board {
	c := make(Board, len(b))
	for y, row := range b {
		c[y] = append([]CellState(nil), row...)
	}
	return c
}
