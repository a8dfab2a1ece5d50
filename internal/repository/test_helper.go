package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/battleship/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 创建内存数据库并迁移归档表
func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 内存库每个连接独立，限制为单连接保证各查询看到同一份数据
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.MatchRecord{}))
	return db
}

// CleanupTestDB 关闭测试数据库
func CleanupTestDB(db *gorm.DB) {
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// CreateTestMatchRecord 创建测试归档记录
func CreateTestMatchRecord(gameID, winnerID string, finishedAt time.Time) *models.MatchRecord {
	players, _ := models.NewJSON([]models.MatchPlayer{
		{ID: winnerID, Name: "Alice", ShipsTotal: 1, Actions: 2, Achievements: []string{"first_blood"}},
		{ID: "loser", Name: "Bob", ShipsSunk: 1, ShipsTotal: 1, HitsTaken: 2, Actions: 1},
	})
	return &models.MatchRecord{
		GameID:      gameID,
		BoardSize:   10,
		PlayerCount: 2,
		WinnerID:    winnerID,
		WinnerName:  "Alice",
		Turns:       3,
		Players:     players,
		StartedAt:   finishedAt.Add(-time.Minute),
		FinishedAt:  finishedAt,
	}
}

// AssertMatchRecord 验证归档记录
func AssertMatchRecord(t *testing.T, expected, actual *models.MatchRecord) {
	assert.Equal(t, expected.GameID, actual.GameID)
	assert.Equal(t, expected.WinnerID, actual.WinnerID)
	assert.Equal(t, expected.WinnerName, actual.WinnerName)
	assert.Equal(t, expected.BoardSize, actual.BoardSize)
	assert.Equal(t, expected.PlayerCount, actual.PlayerCount)
	assert.Equal(t, expected.Turns, actual.Turns)
}
