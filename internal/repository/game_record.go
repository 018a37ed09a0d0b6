package repository

import (
	"context"

	"github.com/guzus/llm-mafia-game/internal/models"
	"gorm.io/gorm"
)

// GameRecordRepository 对局记录仓储接口
type GameRecordRepository interface {
	BaseRepository
	Create(ctx context.Context, record *models.GameRecord) error
	FindByGameID(ctx context.Context, gameID string) (*models.GameRecord, error)
	FindRecent(ctx context.Context, limit int) ([]*models.GameRecord, error)
	FindAll(ctx context.Context, p *Pagination) ([]*models.GameRecord, error)
	CountByWinner(ctx context.Context, winner string) (int64, error)
}

// gameRecordRepo 对局记录仓储实现
type gameRecordRepo struct {
	*BaseRepo
}

// NewGameRecordRepository 创建对局记录仓储
func NewGameRecordRepository(db *gorm.DB) GameRecordRepository {
	return &gameRecordRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 保存一局已完成的游戏（每局只写入一次）
func (r *gameRecordRepo) Create(ctx context.Context, record *models.GameRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByGameID 根据游戏ID查找
func (r *gameRecordRepo) FindByGameID(ctx context.Context, gameID string) (*models.GameRecord, error) {
	var record models.GameRecord
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindRecent 查找最近完成的对局（按时间倒序）
func (r *gameRecordRepo) FindRecent(ctx context.Context, limit int) ([]*models.GameRecord, error) {
	var records []*models.GameRecord

	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	err := r.db.WithContext(ctx).
		Order("timestamp desc").
		Limit(limit).
		Find(&records).Error

	return records, err
}

// FindAll 分页查询全部对局
func (r *gameRecordRepo) FindAll(ctx context.Context, p *Pagination) ([]*models.GameRecord, error) {
	var records []*models.GameRecord

	// 查询总数
	r.db.WithContext(ctx).
		Model(&models.GameRecord{}).
		Count(&p.Total)

	// 查询数据
	err := r.db.WithContext(ctx).
		Order("timestamp desc").
		Scopes(Paginate(p)).
		Find(&records).Error

	return records, err
}

// CountByWinner 按胜方统计对局数
func (r *gameRecordRepo) CountByWinner(ctx context.Context, winner string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GameRecord{}).
		Where("winner = ?", winner).
		Count(&count).Error
	return count, err
}

// WithTx 使用事务
func (r *gameRecordRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameRecordRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
