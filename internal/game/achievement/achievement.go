// Package achievement 成就目录、发放与触发规则。
package achievement

import "time"

// Type 成就类型
type Type string

const (
	FirstBlood   Type = "first_blood"
	LuckyShot    Type = "lucky_shot"
	Sharpshooter Type = "sharpshooter"
	Annihilator  Type = "annihilator"
	SpellMaster  Type = "spell_master"
	PerfectGame  Type = "perfect_game"
)

// 触发阈值
const (
	SharpshooterStreak  = 5
	SpellMasterDistinct = 3
)

// Info 成就展示信息
type Info struct {
	Name        string
	Description string
}

var catalogue = map[Type]Info{
	FirstBlood:   {"First Blood", "Hit an enemy ship for the first time"},
	LuckyShot:    {"Lucky Shot", "Hit a ship on your first try in a game"},
	Sharpshooter: {"Sharpshooter", "Land 5 consecutive hits"},
	Annihilator:  {"Annihilator", "Sink all enemy ships"},
	SpellMaster:  {"Spell Master", "Use 3 different types of spells"},
	PerfectGame:  {"Perfect Game", "Win without losing any ships"},
}

// Describe 返回成就展示信息
func Describe(t Type) (Info, bool) {
	info, ok := catalogue[t]
	return info, ok
}

// Achievement 玩家获得的成就
type Achievement struct {
	Type        Type      `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
	PlayerID    string    `json:"player_id"`
}

// Has 列表中是否已有该类型
func Has(list []*Achievement, t Type) bool {
	for _, a := range list {
		if a.Type == t {
			return true
		}
	}
	return false
}

// Award 发放成就。已持有同类型时返回 nil，保证每种类型至多一条。
func Award(list *[]*Achievement, playerID string, t Type, now time.Time) *Achievement {
	if Has(*list, t) {
		return nil
	}
	info, ok := catalogue[t]
	if !ok {
		return nil
	}

	a := &Achievement{
		Type:        t,
		Name:        info.Name,
		Description: info.Description,
		EarnedAt:    now,
		PlayerID:    playerID,
	}
	*list = append(*list, a)
	return a
}

// Clone 深拷贝成就列表
func Clone(list []*Achievement) []*Achievement {
	c := make([]*Achievement, len(list))
	for i, a := range list {
		cp := *a
		c[i] = &cp
	}
	return c
}
