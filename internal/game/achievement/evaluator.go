package achievement

import "time"

// Outcome 一次结算后供规则判断的数据
type Outcome struct {
	PlayerID string

	// Damaging 本次行动是否为攻击或伤害性法术
	Damaging bool
	// Cast 本次行动是否为法术
	Cast bool
	// FirstAction 本次是否为该玩家本局第一次行动
	FirstAction bool
	// NewHits 本次新命中的格数
	NewHits int
	// TargetTotalHits 结算后目标舰队累计被命中格数，修复不减少
	TargetTotalHits int
	// ConsecutiveHits 结算后的连续命中计数
	ConsecutiveHits int
	// TargetDefeated 目标舰队是否全部沉没
	TargetDefeated bool
	// OwnHitsTaken 行动者自己舰队累计被命中格数，修复不减少
	OwnHitsTaken int
	// ExhaustedSpells 已用尽的不同法术类型数
	ExhaustedSpells int
}

// Evaluator 成就规则评估器
type Evaluator struct {
	now func() time.Time
}

// NewEvaluator 创建评估器，clock 为 nil 时使用 time.Now
func NewEvaluator(clock func() time.Time) *Evaluator {
	if clock == nil {
		clock = time.Now
	}
	return &Evaluator{now: clock}
}

// Evaluate 按固定顺序检查各项规则，返回本次新发放的成就
func (e *Evaluator) Evaluate(list *[]*Achievement, o Outcome) []*Achievement {
	var earned []*Achievement
	now := e.now()

	award := func(t Type) {
		if a := Award(list, o.PlayerID, t, now); a != nil {
			earned = append(earned, a)
		}
	}

	if o.Damaging && o.NewHits > 0 {
		award(FirstBlood)

		// 首次出手命中，并且是目标舰队被命中的第一格
		if o.FirstAction && o.TargetTotalHits == o.NewHits {
			award(LuckyShot)
		}

		if o.ConsecutiveHits >= SharpshooterStreak {
			award(Sharpshooter)
		}
	}

	if o.Damaging && o.TargetDefeated {
		award(Annihilator)
		if o.OwnHitsTaken == 0 {
			award(PerfectGame)
		}
	}

	if o.Cast && o.ExhaustedSpells >= SpellMasterDistinct {
		award(SpellMaster)
	}

	return earned
}
