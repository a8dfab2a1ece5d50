package game

import (
	"fmt"

	apperrors "github.com/wfunc/battleship/internal/errors"
)

// GameStatus 游戏状态枚举
type GameStatus string

const (
	StatusSetup      GameStatus = "setup"       // 等待加入与布置
	StatusReady      GameStatus = "ready"       // 保留状态，当前流程不会停留
	StatusInProgress GameStatus = "in_progress" // 对局中
	StatusFinished   GameStatus = "finished"    // 已结束
)

// Event 状态事件
type Event string

const (
	EventStart  Event = "start"
	EventFinish Event = "finish"
)

// StateTransition 状态转换定义
type StateTransition struct {
	From  GameStatus
	Event Event
	To    GameStatus
	Guard func(g *Game) error
}

// StateMachine 游戏状态机，只描述转换规则，状态本身保存在 Game 上
type StateMachine struct {
	transitions map[string]StateTransition
}

// NewStateMachine 创建状态机
func NewStateMachine() *StateMachine {
	sm := &StateMachine{transitions: make(map[string]StateTransition)}
	sm.initTransitions()
	return sm
}

// initTransitions 初始化状态转换规则
func (sm *StateMachine) initTransitions() {
	// 布置 -> 对局中（全部玩家准备）
	sm.addTransition(StateTransition{
		From:  StatusSetup,
		Event: EventStart,
		To:    StatusInProgress,
		Guard: func(g *Game) error {
			if len(g.Players) < MinPlayers {
				return apperrors.Newf(apperrors.ErrStateConflict, "至少需要 %d 名玩家", MinPlayers)
			}
			for _, p := range g.Players {
				if !p.IsReady {
					return apperrors.Newf(apperrors.ErrStateConflict, "玩家 %s 尚未准备", p.ID)
				}
			}
			return nil
		},
	})

	// 对局中 -> 已结束（某一方舰队全部沉没）
	sm.addTransition(StateTransition{
		From:  StatusInProgress,
		Event: EventFinish,
		To:    StatusFinished,
		Guard: func(g *Game) error {
			for _, p := range g.Players {
				if p.Ships.AllSunk() {
					return nil
				}
			}
			return apperrors.New(apperrors.ErrStateConflict, "没有被全歼的舰队")
		},
	})
}

// addTransition 添加状态转换
func (sm *StateMachine) addTransition(t StateTransition) {
	sm.transitions[sm.transitionKey(t.From, t.Event)] = t
}

// transitionKey 生成转换键
func (sm *StateMachine) transitionKey(status GameStatus, event Event) string {
	return fmt.Sprintf("%s:%s", status, event)
}

// CanTransition 检查当前状态下事件是否有定义且守卫通过
func (sm *StateMachine) CanTransition(g *Game, event Event) bool {
	t, ok := sm.transitions[sm.transitionKey(g.Status, event)]
	if !ok {
		return false
	}
	return t.Guard == nil || t.Guard(g) == nil
}

// Trigger 触发事件，失败时保持原状态
func (sm *StateMachine) Trigger(g *Game, event Event) error {
	t, ok := sm.transitions[sm.transitionKey(g.Status, event)]
	if !ok {
		return apperrors.Newf(apperrors.ErrStateConflict, "无效的状态转换: 状态=%s, 事件=%s", g.Status, event)
	}
	if t.Guard != nil {
		if err := t.Guard(g); err != nil {
			return err
		}
	}
	g.Status = t.To
	return nil
}
