package game

import (
	"context"

	apperrors "github.com/wfunc/battleship/internal/errors"
	"github.com/wfunc/battleship/internal/models"
	"github.com/wfunc/battleship/internal/repository"
)

// 推送事件类型
const (
	NotifyPlayerJoined = "player_joined"
	NotifyShipsPlaced  = "ships_placed"
	NotifyPlayerReady  = "player_ready"
	NotifyGameStarted  = "game_started"
	NotifyTurnResolved = "turn_resolved"
	NotifyGameFinished = "game_finished"
	NotifyGameDeleted  = "game_deleted"
)

// Notifier 对局事件推送接口
type Notifier interface {
	Publish(gameID, eventType string, payload interface{})
}

// Archiver 对局归档接口
type Archiver interface {
	Archive(ctx context.Context, g *Game) error
}

// RecordArchiver 把已结束的对局写入 match_records
type RecordArchiver struct {
	repo repository.MatchRecordRepository
}

// NewRecordArchiver 创建归档器
func NewRecordArchiver(repo repository.MatchRecordRepository) *RecordArchiver {
	return &RecordArchiver{repo: repo}
}

// Archive 归档对局，g 必须已结束
func (a *RecordArchiver) Archive(ctx context.Context, g *Game) error {
	record, err := ToMatchRecord(g)
	if err != nil {
		return err
	}
	return a.repo.Create(ctx, record)
}

// ToMatchRecord 将已结束的对局转换为归档记录
func ToMatchRecord(g *Game) (*models.MatchRecord, error) {
	if g.Status != StatusFinished {
		return nil, apperrors.New(apperrors.ErrGameNotInProgress, "只能归档已结束的对局")
	}

	players := make([]models.MatchPlayer, 0, len(g.Players))
	winnerName := ""
	for _, p := range g.Players {
		mp := models.MatchPlayer{
			ID:           p.ID,
			Name:         p.Name,
			ShipsSunk:    p.Ships.SunkCount(),
			ShipsTotal:   len(p.Ships),
			HitsTaken:    p.HitsTaken,
			Actions:      p.Actions,
			Achievements: make([]string, 0, len(p.Achievements)),
		}
		for _, a := range p.Achievements {
			mp.Achievements = append(mp.Achievements, string(a.Type))
		}
		if p.ID == g.WinnerID {
			winnerName = p.Name
		}
		players = append(players, mp)
	}

	data, err := models.NewJSON(players)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUnknown, "序列化玩家统计失败")
	}

	record := &models.MatchRecord{
		GameID:      g.ID,
		BoardSize:   g.Config.BoardSize,
		PlayerCount: len(g.Players),
		WinnerID:    g.WinnerID,
		WinnerName:  winnerName,
		Turns:       g.Turns,
		Players:     data,
		StartedAt:   g.CreatedAt,
	}
	if g.FinishedAt != nil {
		record.FinishedAt = *g.FinishedAt
	}
	return record, nil
}
