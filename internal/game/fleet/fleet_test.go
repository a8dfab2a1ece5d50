package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/battleship/internal/errors"
	"github.com/wfunc/battleship/internal/game/grid"
)

func pos(x, y int) grid.Position {
	return grid.Position{X: x, Y: y}
}

func TestValidatePlacement(t *testing.T) {
	existing := Fleet{NewShip("Destroyer", []grid.Position{pos(0, 0), pos(1, 0)})}

	tests := []struct {
		name      string
		candidate []grid.Position
		wantErr   bool
	}{
		{"合法布置", []grid.Position{pos(0, 2), pos(1, 2), pos(2, 2)}, false},
		{"x越界", []grid.Position{pos(9, 5), pos(10, 5)}, true},
		{"负坐标", []grid.Position{pos(-1, 5)}, true},
		{"与已有舰船重叠", []grid.Position{pos(1, 0), pos(1, 1)}, true},
		{"自身坐标重复", []grid.Position{pos(4, 4), pos(4, 4)}, true},
		{"空舰船", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlacement(tt.candidate, existing, 10)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrInvalidPlacement))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBatch_AllOrNothing(t *testing.T) {
	rules := Rules{BoardSize: 10, AllowCustom: true}

	// 同一请求内互相重叠
	err := ValidateBatch([]Placement{
		{Name: "A", Positions: []grid.Position{pos(0, 0), pos(1, 0)}},
		{Name: "B", Positions: []grid.Position{pos(1, 0), pos(2, 0)}},
	}, nil, rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B")

	// 第二艘越界，整批失败
	err = ValidateBatch([]Placement{
		{Name: "A", Positions: []grid.Position{pos(0, 0)}},
		{Name: "B", Positions: []grid.Position{pos(0, 10)}},
	}, nil, rules)
	assert.Error(t, err)

	err = ValidateBatch([]Placement{
		{Name: "A", Positions: []grid.Position{pos(0, 0)}},
		{Name: "B", Positions: []grid.Position{pos(0, 1)}},
	}, nil, rules)
	assert.NoError(t, err)

	assert.Error(t, ValidateBatch(nil, nil, rules))
	assert.Error(t, ValidateBatch([]Placement{{Name: "", Positions: []grid.Position{pos(0, 0)}}}, nil, rules))
}

func TestValidateBatch_ClassicShips(t *testing.T) {
	rules := Rules{BoardSize: 10, AllowCustom: false}

	err := ValidateBatch([]Placement{
		{Name: "Destroyer", Positions: []grid.Position{pos(0, 0), pos(1, 0)}},
	}, nil, rules)
	assert.NoError(t, err)

	err = ValidateBatch([]Placement{
		{Name: "Destroyer", Positions: []grid.Position{pos(0, 0), pos(1, 0), pos(2, 0)}},
	}, nil, rules)
	assert.Error(t, err)

	err = ValidateBatch([]Placement{
		{Name: "Rowboat", Positions: []grid.Position{pos(0, 0)}},
	}, nil, rules)
	assert.Error(t, err)
}

func TestShip_RegisterHitIdempotent(t *testing.T) {
	ship := NewShip("Destroyer", []grid.Position{pos(0, 0), pos(1, 0)})

	newHit, sunk := ship.RegisterHit(pos(0, 0))
	assert.True(t, newHit)
	assert.False(t, sunk)
	assert.False(t, ship.IsSunk)

	// 重复命中同一格不改变状态
	newHit, sunk = ship.RegisterHit(pos(0, 0))
	assert.False(t, newHit)
	assert.False(t, sunk)
	assert.Len(t, ship.Hits, 1)

	// 不属于本舰的坐标
	newHit, _ = ship.RegisterHit(pos(5, 5))
	assert.False(t, newHit)

	newHit, sunk = ship.RegisterHit(pos(1, 0))
	assert.True(t, newHit)
	assert.True(t, sunk)
	assert.True(t, ship.IsSunk)

	// 沉没后再次命中不会重复报告沉没
	newHit, sunk = ship.RegisterHit(pos(1, 0))
	assert.False(t, newHit)
	assert.False(t, sunk)
	assert.True(t, ship.IsSunk)
}

func TestShip_ClearHit(t *testing.T) {
	ship := NewShip("Destroyer", []grid.Position{pos(0, 0), pos(1, 0)})
	ship.RegisterHit(pos(0, 0))
	ship.RegisterHit(pos(1, 0))
	require.True(t, ship.IsSunk)

	assert.True(t, ship.ClearHit(pos(1, 0)))
	assert.False(t, ship.IsSunk)
	assert.Equal(t, 1, ship.Remaining())

	assert.False(t, ship.ClearHit(pos(1, 0)))
	assert.False(t, ship.ClearHit(pos(7, 7)))
}

func TestFleet_Queries(t *testing.T) {
	a := NewShip("A", []grid.Position{pos(0, 0)})
	b := NewShip("B", []grid.Position{pos(2, 2), pos(2, 3)})
	f := Fleet{a, b}

	assert.Equal(t, b, f.ShipAt(pos(2, 3)))
	assert.Nil(t, f.ShipAt(pos(9, 9)))
	assert.False(t, f.AllSunk())
	assert.False(t, Fleet{}.AllSunk())

	a.RegisterHit(pos(0, 0))
	b.RegisterHit(pos(2, 2))
	assert.Equal(t, 2, f.TotalHits())
	assert.Equal(t, 1, f.SunkCount())

	b.RegisterHit(pos(2, 3))
	assert.True(t, f.AllSunk())
}

func TestFleet_CloneIsDeep(t *testing.T) {
	f := Fleet{NewShip("A", []grid.Position{pos(0, 0), pos(0, 1)})}
	c := f.Clone()

	c[0].RegisterHit(pos(0, 0))
	assert.Empty(t, f[0].Hits)
	assert.Len(t, c[0].Hits, 1)
}

func TestRecomputeBoard(t *testing.T) {
	ship := NewShip("Destroyer", []grid.Position{pos(0, 0), pos(1, 0)})
	ship.RegisterHit(pos(1, 0))

	board := RecomputeBoard(5, Fleet{ship})
	require.Len(t, board, 5)
	assert.Equal(t, CellShip, board[0][0])
	assert.Equal(t, CellHit, board[0][1])
	assert.Equal(t, CellEmpty, board[1][0])

	// 重建结果是纯函数
	assert.Equal(t, board, RecomputeBoard(5, Fleet{ship}))

	ship.ClearHit(pos(1, 0))
	assert.Equal(t, CellShip, RecomputeBoard(5, Fleet{ship})[0][1])
}
