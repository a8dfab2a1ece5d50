package combat

import (
	apperrors "github.com/wfunc/battleship/internal/errors"
)

// SpellType 法术类型
type SpellType string

const (
	SpellNuke      SpellType = "nuke"      // 3x3 范围伤害
	SpellSonar     SpellType = "sonar"     // 5x5 范围侦测
	SpellAirstrike SpellType = "airstrike" // 整行或整列
	SpellRepair    SpellType = "repair"    // 修复己方一格
)

// AllSpellTypes 全部法术类型
var AllSpellTypes = []SpellType{SpellNuke, SpellSonar, SpellAirstrike, SpellRepair}

// IsValid 是否为已知法术
func (t SpellType) IsValid() bool {
	switch t {
	case SpellNuke, SpellSonar, SpellAirstrike, SpellRepair:
		return true
	}
	return false
}

// Damaging 该法术是否会对目标造成伤害
func (t SpellType) Damaging() bool {
	return t == SpellNuke || t == SpellAirstrike
}

// ParseSpellType 解析法术类型
func ParseSpellType(s string) (SpellType, error) {
	t := SpellType(s)
	if !t.IsValid() {
		return "", apperrors.Newf(apperrors.ErrInvalidSpell, "未知的法术: %s", s)
	}
	return t, nil
}

// Spell 玩家持有的法术条目
type Spell struct {
	Type          SpellType `json:"type"`
	UsesRemaining int       `json:"uses_remaining"`
}

// Loadout 玩家的法术列表
type Loadout []*Spell

// NewLoadout 按初始配置创建法术列表，每个条目可用一次
func NewLoadout(types []SpellType) Loadout {
	loadout := make(Loadout, 0, len(types))
	for _, t := range types {
		loadout = append(loadout, &Spell{Type: t, UsesRemaining: 1})
	}
	return loadout
}

// Remaining 某类法术剩余次数
func (l Loadout) Remaining(t SpellType) int {
	total := 0
	for _, s := range l {
		if s.Type == t {
			total += s.UsesRemaining
		}
	}
	return total
}

// Consume 消耗一次法术，找不到可用条目时返回资源耗尽错误
func (l Loadout) Consume(t SpellType) error {
	for _, s := range l {
		if s.Type == t && s.UsesRemaining > 0 {
			s.UsesRemaining--
			return nil
		}
	}
	return apperrors.Newf(apperrors.ErrSpellUnavailable, "%s 没有剩余次数", t)
}

// ExhaustedTypes 已用尽的法术类型（曾持有且剩余次数为 0），按首次出现顺序
func (l Loadout) ExhaustedTypes() []SpellType {
	var exhausted []SpellType
	seen := make(map[SpellType]bool)
	for _, s := range l {
		if seen[s.Type] {
			continue
		}
		seen[s.Type] = true
		if l.Remaining(s.Type) == 0 {
			exhausted = append(exhausted, s.Type)
		}
	}
	return exhausted
}

// Clone 深拷贝
func (l Loadout) Clone() Loadout {
	c := make(Loadout, len(l))
	for i, s := range l {
		cp := *s
		c[i] = &cp
	}
	return c
}
