package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/battleship/internal/errors"
	"github.com/wfunc/battleship/internal/game/fleet"
	"github.com/wfunc/battleship/internal/game/grid"
)

func newTestGame(players int) *Game {
	g := NewGame(DefaultGameConfig(), testNow)
	for i := 0; i < players; i++ {
		p := NewPlayer("p", g.Config)
		p.Ships = fleet.Fleet{fleet.NewShip("Destroyer", []grid.Position{{X: 0, Y: 0}})}
		g.Players = append(g.Players, p)
	}
	return g
}

func TestStateMachine_Start(t *testing.T) {
	sm := NewStateMachine()

	g := newTestGame(2)
	assert.False(t, sm.CanTransition(g, EventStart))
	err := sm.Trigger(g, EventStart)
	assert.True(t, apperrors.Is(err, apperrors.ErrStateConflict))
	assert.Equal(t, StatusSetup, g.Status)

	g.Players[0].IsReady = true
	g.Players[1].IsReady = true
	assert.True(t, sm.CanTransition(g, EventStart))
	require.NoError(t, sm.Trigger(g, EventStart))
	assert.Equal(t, StatusInProgress, g.Status)

	// 单人即使准备也不能开局
	solo := newTestGame(1)
	solo.Players[0].IsReady = true
	assert.False(t, sm.CanTransition(solo, EventStart))
}

func TestStateMachine_Finish(t *testing.T) {
	sm := NewStateMachine()
	g := newTestGame(2)

	// setup 状态下没有 finish 转换
	assert.True(t, apperrors.IsKind(sm.Trigger(g, EventFinish), apperrors.KindStateConflict))

	g.Status = StatusInProgress
	assert.Error(t, sm.Trigger(g, EventFinish))
	assert.Equal(t, StatusInProgress, g.Status)

	g.Players[1].Ships[0].RegisterHit(grid.Position{X: 0, Y: 0})
	require.NoError(t, sm.Trigger(g, EventFinish))
	assert.Equal(t, StatusFinished, g.Status)

	// 已结束是终态
	assert.False(t, sm.CanTransition(g, EventStart))
	assert.False(t, sm.CanTransition(g, EventFinish))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	older := NewGame(DefaultGameConfig(), testNow)
	newer := NewGame(DefaultGameConfig(), testNow.Add(1))
	require.NoError(t, store.Create(ctx, newer))
	require.NoError(t, store.Create(ctx, older))
	assert.True(t, apperrors.Is(store.Create(ctx, older), apperrors.ErrAlreadyExists))
	assert.Equal(t, 2, store.Count())

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, older.ID, sessions[0].Snapshot().ID)
	assert.Equal(t, newer.ID, sessions[1].Snapshot().ID)

	_, err = store.Get(ctx, "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrGameNotFound))

	session, err := store.Get(ctx, older.ID)
	require.NoError(t, err)
	_, err = session.Update(func(g *Game) error {
		g.Status = StatusInProgress
		return apperrors.New(apperrors.ErrStateConflict)
	})
	assert.Error(t, err)

	require.NoError(t, store.Delete(ctx, older.ID))
	assert.True(t, apperrors.Is(store.Delete(ctx, older.ID), apperrors.ErrGameNotFound))
	assert.Equal(t, 1, store.Count())
}
