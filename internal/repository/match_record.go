package repository

import (
	"context"
	"errors"

	apperrors "github.com/wfunc/battleship/internal/errors"
	"github.com/wfunc/battleship/internal/models"
	"gorm.io/gorm"
)

// MatchRecordRepository 对局归档仓储接口
type MatchRecordRepository interface {
	Create(ctx context.Context, record *models.MatchRecord) error
	FindByGameID(ctx context.Context, gameID string) (*models.MatchRecord, error)
	List(ctx context.Context, p *Pagination) ([]*models.MatchRecord, error)
	CountByWinner(ctx context.Context, winnerID string) (int64, error)
}

// matchRecordRepo 对局归档仓储实现
type matchRecordRepo struct {
	baseRepo
}

// NewMatchRecordRepository 创建对局归档仓储
func NewMatchRecordRepository(db *gorm.DB) MatchRecordRepository {
	return &matchRecordRepo{
		baseRepo: baseRepo{db: db},
	}
}

// Create 写入归档，同一局重复写入返回已存在错误
func (r *matchRecordRepo) Create(ctx context.Context, record *models.MatchRecord) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.MatchRecord{}).
			Where("game_id = ?", record.GameID).
			Count(&count).Error; err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
		}
		if count > 0 {
			return apperrors.New(apperrors.ErrAlreadyExists, record.GameID)
		}
		if err := tx.Create(record).Error; err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
		}
		return nil
	})
}

// FindByGameID 根据游戏ID查找
func (r *matchRecordRepo) FindByGameID(ctx context.Context, gameID string) (*models.MatchRecord, error) {
	var record models.MatchRecord
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, gameID)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return &record, nil
}

// List 按结束时间倒序分页查询
func (r *matchRecordRepo) List(ctx context.Context, p *Pagination) ([]*models.MatchRecord, error) {
	var records []*models.MatchRecord

	// 查询总数
	if err := r.db.WithContext(ctx).
		Model(&models.MatchRecord{}).
		Count(&p.Total).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	// 查询数据
	err := r.db.WithContext(ctx).
		Order("finished_at desc").
		Order("id desc").
		Scopes(Paginate(p)).
		Find(&records).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return records, nil
}

// CountByWinner 统计玩家获胜局数
func (r *matchRecordRepo) CountByWinner(ctx context.Context, winnerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MatchRecord{}).
		Where("winner_id = ?", winnerID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return count, nil
}
