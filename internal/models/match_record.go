package models

import "time"

// MatchRecord 已结束对局的归档记录
type MatchRecord struct {
	BaseModel
	GameID      string    `gorm:"uniqueIndex;size:64;not null" json:"game_id"`
	BoardSize   int       `gorm:"not null" json:"board_size"`
	PlayerCount int       `gorm:"not null" json:"player_count"`
	WinnerID    string    `gorm:"size:64;index" json:"winner_id"`
	WinnerName  string    `gorm:"size:100" json:"winner_name"`
	Turns       int       `gorm:"default:0" json:"turns"`
	Players     JSON      `gorm:"type:text" json:"players"` // []MatchPlayer
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `gorm:"index" json:"finished_at"`
}

// TableName 表名
func (MatchRecord) TableName() string {
	return "match_records"
}

// MatchPlayer 归档中的单个玩家统计
type MatchPlayer struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ShipsSunk    int      `json:"ships_sunk"`
	ShipsTotal   int      `json:"ships_total"`
	HitsTaken    int      `json:"hits_taken"`
	Actions      int      `json:"actions"`
	Achievements []string `json:"achievements"`
}
