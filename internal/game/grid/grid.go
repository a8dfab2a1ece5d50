// Package grid 提供棋盘坐标校验与范围图案生成，全部为纯函数。
package grid

import (
	"fmt"

	apperrors "github.com/wfunc/battleship/internal/errors"
)

// 棋盘尺寸范围
const (
	MinBoardSize = 5
	MaxBoardSize = 20
)

// Position 棋盘坐标
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String 返回 (x,y) 格式
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Axis 直线打击方向
type Axis string

const (
	AxisRow    Axis = "row"    // 整行：y 固定
	AxisColumn Axis = "column" // 整列：x 固定
)

// ParseAxis 解析方向，空字符串视为整行
func ParseAxis(s string) (Axis, error) {
	switch Axis(s) {
	case "", AxisRow:
		return AxisRow, nil
	case AxisColumn:
		return AxisColumn, nil
	default:
		return "", apperrors.Newf(apperrors.ErrInvalidParam, "未知的方向: %s", s)
	}
}

// IsValidSize 检查棋盘尺寸是否在允许范围内
func IsValidSize(size int) bool {
	return size >= MinBoardSize && size <= MaxBoardSize
}

// IsValid 坐标是否位于 size x size 的棋盘内
func IsValid(p Position, size int) bool {
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}

// SquareArea 返回与中心切比雪夫距离不超过 radius 的所有棋盘内坐标。
// 遍历顺序为 dx 外层、dy 内层，均从 -radius 到 radius。
func SquareArea(center Position, radius, size int) []Position {
	if radius < 0 {
		return nil
	}

	area := make([]Position, 0, (2*radius+1)*(2*radius+1))
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			p := Position{X: center.X + dx, Y: center.Y + dy}
			if IsValid(p, size) {
				area = append(area, p)
			}
		}
	}
	return area
}

// LinePattern 返回与 p 同行或同列的整条直线
func LinePattern(p Position, size int, axis Axis) []Position {
	line := make([]Position, 0, size)
	for i := 0; i < size; i++ {
		if axis == AxisColumn {
			line = append(line, Position{X: p.X, Y: i})
		} else {
			line = append(line, Position{X: i, Y: p.Y})
		}
	}
	return line
}

// Contains 判断坐标列表是否包含 p
func Contains(positions []Position, p Position) bool {
	for _, q := range positions {
		if q == p {
			return true
		}
	}
	return false
}
