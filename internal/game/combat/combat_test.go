package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/battleship/internal/errors"
	"github.com/wfunc/battleship/internal/game/fleet"
	"github.com/wfunc/battleship/internal/game/grid"
)

func pos(x, y int) grid.Position {
	return grid.Position{X: x, Y: y}
}

func newFleet() fleet.Fleet {
	return fleet.Fleet{
		fleet.NewShip("Destroyer", []grid.Position{pos(0, 0), pos(1, 0)}),
		fleet.NewShip("Cruiser", []grid.Position{pos(5, 5), pos(5, 6), pos(5, 7)}),
	}
}

func TestAttack(t *testing.T) {
	target := newFleet()

	miss := Attack(target, pos(3, 3))
	assert.False(t, miss.Hit)
	assert.Equal(t, []grid.Position{pos(3, 3)}, miss.AffectedPositions)

	hit := Attack(target, pos(0, 0))
	assert.True(t, hit.Hit)
	assert.Equal(t, 1, hit.HitCount)
	assert.Empty(t, hit.SunkShip)

	// 已命中的格子再次攻击视为未命中
	again := Attack(target, pos(0, 0))
	assert.False(t, again.Hit)
	assert.Equal(t, 0, again.HitCount)

	sunk := Attack(target, pos(1, 0))
	assert.True(t, sunk.Hit)
	assert.Equal(t, "Destroyer", sunk.SunkShip)
	assert.True(t, target[0].IsSunk)
}

func TestNuke_CornerClipping(t *testing.T) {
	target := newFleet()

	result := Nuke(target, pos(0, 0), 10)
	assert.True(t, result.Hit)
	assert.ElementsMatch(t, []grid.Position{pos(0, 0), pos(1, 0), pos(0, 1), pos(1, 1)}, result.AffectedPositions)
	assert.Equal(t, 2, result.HitCount)
	assert.Equal(t, "Destroyer", result.SunkShip)
	assert.True(t, target[0].IsSunk)
}

func TestNuke_HitMeansCastSucceeded(t *testing.T) {
	target := newFleet()

	// 空旷区域施放，影响范围非空即视为成功
	result := Nuke(target, pos(8, 1), 10)
	assert.True(t, result.Hit)
	assert.Len(t, result.AffectedPositions, 9)
	assert.Equal(t, 0, result.HitCount)
	assert.Equal(t, 0, target.TotalHits())
}

func TestNuke_MultipleShips(t *testing.T) {
	target := fleet.Fleet{
		fleet.NewShip("A", []grid.Position{pos(4, 4)}),
		fleet.NewShip("B", []grid.Position{pos(6, 6)}),
	}

	result := Nuke(target, pos(5, 5), 10)
	assert.Equal(t, 2, result.HitCount)
	assert.Equal(t, []string{"A", "B"}, result.SunkShips)
	assert.True(t, target.AllSunk())
}

func TestSonar_ReadOnly(t *testing.T) {
	target := newFleet()

	found := Sonar(target, pos(3, 5), 10)
	assert.True(t, found.Hit)
	assert.Empty(t, found.AffectedPositions)
	assert.Equal(t, 0, target.TotalHits())

	empty := Sonar(target, pos(9, 0), 10)
	assert.False(t, empty.Hit)
}

func TestAirstrike_BothAxes(t *testing.T) {
	target := newFleet()

	row := Airstrike(target, pos(7, 0), 10, grid.AxisRow)
	assert.True(t, row.Hit)
	assert.Len(t, row.AffectedPositions, 10)
	assert.Equal(t, 2, row.HitCount)
	assert.Equal(t, "Destroyer", row.SunkShip)

	col := Airstrike(target, pos(5, 0), 10, grid.AxisColumn)
	assert.Len(t, col.AffectedPositions, 10)
	for _, p := range col.AffectedPositions {
		assert.Equal(t, 5, p.X)
	}
	assert.Equal(t, 3, col.HitCount)
	assert.True(t, target.AllSunk())
}

func TestRepair(t *testing.T) {
	own := newFleet()
	Attack(own, pos(0, 0))
	Attack(own, pos(1, 0))
	require.True(t, own[0].IsSunk)

	result := Repair(own, pos(1, 0))
	assert.True(t, result.Hit)
	assert.Equal(t, []grid.Position{pos(1, 0)}, result.AffectedPositions)
	assert.False(t, own[0].IsSunk)

	// 未受损的格子无法修复
	nothing := Repair(own, pos(5, 5))
	assert.False(t, nothing.Hit)
	assert.Empty(t, nothing.AffectedPositions)
}

func TestResolve(t *testing.T) {
	target := newFleet()
	own := newFleet()
	Attack(own, pos(5, 5))

	r, err := Resolve(Cast{Spell: SpellRepair, Target: target, Own: own, Position: pos(5, 5), BoardSize: 10})
	require.NoError(t, err)
	assert.True(t, r.Hit)
	assert.Equal(t, 0, own.TotalHits())

	r, err = Resolve(Cast{Spell: SpellAirstrike, Target: target, Position: pos(0, 6), BoardSize: 10, Axis: grid.AxisRow})
	require.NoError(t, err)
	assert.Equal(t, 1, r.HitCount)

	_, err = Resolve(Cast{Spell: "meteor"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidSpell))
}

func TestLoadout(t *testing.T) {
	loadout := NewLoadout([]SpellType{SpellNuke, SpellSonar, SpellNuke})
	assert.Equal(t, 2, loadout.Remaining(SpellNuke))
	assert.Empty(t, loadout.ExhaustedTypes())

	require.NoError(t, loadout.Consume(SpellSonar))
	assert.Equal(t, []SpellType{SpellSonar}, loadout.ExhaustedTypes())

	err := loadout.Consume(SpellSonar)
	assert.True(t, apperrors.Is(err, apperrors.ErrSpellUnavailable))

	// 未持有的法术
	assert.Error(t, loadout.Consume(SpellRepair))

	require.NoError(t, loadout.Consume(SpellNuke))
	assert.NotContains(t, loadout.ExhaustedTypes(), SpellNuke)
	require.NoError(t, loadout.Consume(SpellNuke))
	assert.Equal(t, []SpellType{SpellNuke, SpellSonar}, loadout.ExhaustedTypes())
}

func TestParseSpellType(t *testing.T) {
	for _, st := range AllSpellTypes {
		parsed, err := ParseSpellType(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, parsed)
	}

	_, err := ParseSpellType("fireball")
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidSpell))

	assert.True(t, SpellNuke.Damaging())
	assert.False(t, SpellSonar.Damaging())
}
