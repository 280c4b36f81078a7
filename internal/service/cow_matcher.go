package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pwbryant/ranch-tools-application/internal/model"
	"github.com/pwbryant/ranch-tools-application/internal/repository"
	pkgerrors "github.com/pwbryant/ranch-tools-application/pkg/errors"
)

// ── 牛只匹配策略 ──
//
// 导入行如何定位/创建牛只存在两代口径，以接口抽象便于切换：
//   - eidFirstMatcher（默认）：EID 优先匹配，tag+year 兜底；
//     行上同时给出的标识必须指向同一头牛，冲突即拒绝该行，绝不自动改写已有档案
//   - legacyMatcher：按 (ear_tag_id, birth_year) get-or-create，
//     并把行上的 EID 回填到缺失/过期的档案上（历史行为，保留作迁移期开关）
//
// 匹配发生在导入事务内部，返回的 created/updated 计入导入统计。

// matchResult 匹配结果
type matchResult struct {
	cow     *model.Cow // nil 表示行上无可用标识，检查记录无主
	created bool
	updated bool
}

// CowMatcher 导入行的牛只匹配策略
type CowMatcher interface {
	Resolve(ctx context.Context, repo *repository.Repository, rec *importRecord) (matchResult, error)
}

// ─────────────────── 新版策略：EID 优先 ───────────────────

type eidFirstMatcher struct{}

// NewEIDFirstMatcher 创建 EID 优先匹配策略
func NewEIDFirstMatcher() CowMatcher { return eidFirstMatcher{} }

func (eidFirstMatcher) Resolve(ctx context.Context, repo *repository.Repository, rec *importRecord) (matchResult, error) {
	if rec.eid != "" {
		cow, err := repo.Cow.GetByEID(ctx, rec.eid)
		switch {
		case err == nil:
			// EID 命中：行上其余标识必须与档案一致
			if rec.earTagID != "" && cow.EarTagID != rec.earTagID {
				return matchResult{}, fmt.Errorf("电子耳标 %s 档案耳标为 %s，与行上耳标 %s 不符: %w",
					rec.eid, cow.EarTagID, rec.earTagID, pkgerrors.ErrAmbiguousIdentity)
			}
			if rec.birthYear != nil && cow.BirthYear != nil && *cow.BirthYear != *rec.birthYear {
				return matchResult{}, fmt.Errorf("电子耳标 %s 档案出生年为 %d，与行上出生年 %d 不符: %w",
					rec.eid, *cow.BirthYear, *rec.birthYear, pkgerrors.ErrAmbiguousIdentity)
			}
			return matchResult{cow: cow}, nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			// EID 未命中，继续用 tag+year 消歧
		default:
			return matchResult{}, err
		}

		if rec.earTagID != "" && rec.birthYear != nil {
			cow, err := repo.Cow.GetByTagAndYear(ctx, rec.earTagID, rec.birthYear)
			switch {
			case err == nil:
				// tag+year 命中但档案带有别的 EID：两个键指向不同牛，拒绝
				if cow.EID != nil && *cow.EID != rec.eid {
					return matchResult{}, fmt.Errorf("耳标 %s-%d 档案电子耳标为 %s，与行上 %s 不符: %w",
						rec.earTagID, *rec.birthYear, *cow.EID, rec.eid, pkgerrors.ErrAmbiguousIdentity)
				}
				// 档案无 EID：视为同一头牛，但不自动回填（新版口径）
				return matchResult{cow: cow}, nil
			case errors.Is(err, gorm.ErrRecordNotFound):
			default:
				return matchResult{}, err
			}
		}

		// 全部标识未命中 → 按行上全部可用键建档
		eid := rec.eid
		cow = &model.Cow{
			EarTagID:  rec.earTagID,
			BirthYear: rec.birthYear,
			EID:       &eid,
		}
		if err := repo.Cow.Create(ctx, cow); err != nil {
			return matchResult{}, err
		}
		return matchResult{cow: cow, created: true}, nil
	}

	if rec.earTagID != "" && rec.birthYear != nil {
		cow := &model.Cow{EarTagID: rec.earTagID, BirthYear: rec.birthYear}
		created, err := repo.Cow.FirstOrCreateByTagAndYear(ctx, cow)
		if err != nil {
			return matchResult{}, err
		}
		return matchResult{cow: cow, created: created}, nil
	}

	// 无可用标识：检查记录无主落库
	return matchResult{}, nil
}

// ─────────────────── 旧版策略：tag+year 主键 ───────────────────

type legacyMatcher struct{}

// NewLegacyMatcher 创建旧版匹配策略（feature.legacy_cow_matching）
func NewLegacyMatcher() CowMatcher { return legacyMatcher{} }

func (legacyMatcher) Resolve(ctx context.Context, repo *repository.Repository, rec *importRecord) (matchResult, error) {
	if rec.earTagID == "" && rec.birthYear == nil && rec.eid == "" {
		return matchResult{}, nil
	}

	cow := &model.Cow{EarTagID: rec.earTagID, BirthYear: rec.birthYear}
	if rec.eid != "" {
		eid := rec.eid
		cow.EID = &eid
	}
	created, err := repo.Cow.FirstOrCreateByTagAndYear(ctx, cow)
	if err != nil {
		return matchResult{}, err
	}

	// 历史行为：已有档案缺失或不同的 EID 以行上值回填
	updated := false
	if !created && rec.eid != "" && (cow.EID == nil || *cow.EID != rec.eid) {
		eid := rec.eid
		cow.EID = &eid
		if err := repo.Cow.Update(ctx, cow); err != nil {
			return matchResult{}, err
		}
		updated = true
	}

	return matchResult{cow: cow, created: created, updated: updated}, nil
}
