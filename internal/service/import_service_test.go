package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/pwbryant/ranch-tools-application/internal/model"
	"github.com/pwbryant/ranch-tools-application/internal/repository"
)

// ── 测试辅助 ──

const importHeader = "ear_tag_id,birth_year,eid,breeding_season,check_date,comments,is_pregnant,recheck\n"

func setupImportService(matcher CowMatcher) (*ImportService, *mockCowRepo, *mockPregCheckRepo) {
	cowRepo := newMockCowRepo()
	pregRepo := newMockPregCheckRepo()
	pregRepo.cowRepo = cowRepo
	repo := &repository.Repository{
		Cow:            cowRepo,
		PregCheck:      pregRepo,
		BreedingSeason: newMockBreedingSeasonRepo(2024),
	}
	return NewImportService(repo, matcher, zap.NewNop()), cowRepo, pregRepo
}

func importCSV(t *testing.T, svc *ImportService, rows string, dryRun bool) error {
	t.Helper()
	_, err := svc.ImportFromFile(context.Background(), strings.NewReader(importHeader+rows), "herd.csv", dryRun)
	return err
}

func assertImportErrKind(t *testing.T, err error, kind ImportErrorKind) *ImportError {
	t.Helper()
	var ierr *ImportError
	if !errors.As(err, &ierr) {
		t.Fatalf("期望 *ImportError，实际: %v", err)
	}
	if ierr.Kind != kind {
		t.Fatalf("期望错误类别 %s，实际: %s（%s）", kind, ierr.Kind, ierr.Message)
	}
	return ierr
}

// ── 成功导入 ──

func TestImportService_SingleRow(t *testing.T) {
	svc, cowRepo, pregRepo := setupImportService(NewEIDFirstMatcher())

	result, err := svc.ImportFromFile(context.Background(),
		strings.NewReader(importHeader+"101,2020,,2024,2024-09-15,首检,P,false\n"),
		"herd.csv", false)
	if err != nil {
		t.Fatalf("导入应成功: %v", err)
	}
	if result.CowsCreated != 1 || result.PregChecksCreated != 1 {
		t.Errorf("期望新建 1 牛 1 检查，实际: %d 牛 %d 检查", result.CowsCreated, result.PregChecksCreated)
	}
	if result.CowsUpdated != 0 {
		t.Errorf("新版策略不应回填档案，实际更新 %d 头", result.CowsUpdated)
	}
	if len(cowRepo.cows) != 1 {
		t.Fatalf("期望存储 1 头牛，实际: %d", len(cowRepo.cows))
	}
	check := pregRepo.checks[1]
	if check == nil {
		t.Fatal("检查记录未落库")
	}
	if check.BreedingSeason != 2024 {
		t.Errorf("期望配种季 2024，实际: %d", check.BreedingSeason)
	}
	if check.IsPregnant == nil || !*check.IsPregnant {
		t.Errorf("P 应记为已孕，实际: %v", check.IsPregnant)
	}
	if check.CowID == nil {
		t.Error("检查记录应关联牛只")
	}
	if check.Comments != "首检" {
		t.Errorf("备注应保留，实际: %q", check.Comments)
	}
}

func TestImportService_SameCowTwoDates(t *testing.T) {
	svc, cowRepo, pregRepo := setupImportService(NewEIDFirstMatcher())

	result, err := svc.ImportFromFile(context.Background(),
		strings.NewReader(importHeader+
			"101,2020,,2024,2024-09-15,,O,false\n"+
			"101,2020,,2024,2024-10-20,,P,true\n"),
		"herd.csv", false)
	if err != nil {
		t.Fatalf("导入应成功: %v", err)
	}
	if result.CowsCreated != 1 {
		t.Errorf("同一头牛只应建档一次，实际: %d", result.CowsCreated)
	}
	if result.PregChecksCreated != 2 {
		t.Errorf("期望 2 条检查，实际: %d", result.PregChecksCreated)
	}
	if len(cowRepo.cows) != 1 || len(pregRepo.checks) != 2 {
		t.Errorf("存储应为 1 牛 2 检查，实际: %d 牛 %d 检查", len(cowRepo.cows), len(pregRepo.checks))
	}
}

func TestImportService_SeasonFallsBackToCheckDateYear(t *testing.T) {
	svc, _, pregRepo := setupImportService(NewEIDFirstMatcher())

	if err := importCSV(t, svc, "101,2020,,,2023-11-01,,P,false\n", false); err != nil {
		t.Fatalf("导入应成功: %v", err)
	}
	if pregRepo.checks[1].BreedingSeason != 2023 {
		t.Errorf("配种季缺省应取检查日期年份，实际: %d", pregRepo.checks[1].BreedingSeason)
	}
}

// ── 文件与列校验 ──

func TestImportService_MissingColumns(t *testing.T) {
	svc, _, _ := setupImportService(NewEIDFirstMatcher())

	csv := "ear_tag_id,birth_year,breeding_season,check_date,comments,is_pregnant,recheck\n" +
		"101,2020,2024,2024-09-15,,P,false\n"
	_, err := svc.ImportFromFile(context.Background(), strings.NewReader(csv), "herd.csv", false)

	ierr := assertImportErrKind(t, err, ImportErrMissingColumns)
	if len(ierr.MissingColumns) != 1 || ierr.MissingColumns[0] != "eid" {
		t.Errorf("期望缺失列 [eid]，实际: %v", ierr.MissingColumns)
	}
	if !strings.Contains(ierr.Message, "eid") {
		t.Errorf("错误消息应点名缺失列，实际: %s", ierr.Message)
	}
}

func TestImportService_EmptyFile(t *testing.T) {
	svc, _, _ := setupImportService(NewEIDFirstMatcher())

	// 只有表头
	err := importCSV(t, svc, "", false)
	assertImportErrKind(t, err, ImportErrEmptyFile)
}

func TestImportService_AllBlankRowsSucceedWithZeroStats(t *testing.T) {
	svc, cowRepo, pregRepo := setupImportService(NewEIDFirstMatcher())

	// 空白行不算错误：整文件全空白按零写入成功处理
	result, err := svc.ImportFromFile(context.Background(),
		strings.NewReader(importHeader+",,,,,,,\n,,,,,,,\n"),
		"herd.csv", false)
	if err != nil {
		t.Fatalf("全空白行文件应成功: %v", err)
	}
	if result.CowsCreated != 0 || result.CowsUpdated != 0 || result.PregChecksCreated != 0 {
		t.Errorf("期望零统计，实际: %+v", result)
	}
	if len(cowRepo.cows) != 0 || len(pregRepo.checks) != 0 {
		t.Errorf("不应有任何写入，实际: %d 牛 %d 检查", len(cowRepo.cows), len(pregRepo.checks))
	}
}

// ── 行级校验 ──

func TestImportService_RequiredCheckDateEmpty(t *testing.T) {
	svc, _, _ := setupImportService(NewEIDFirstMatcher())

	err := importCSV(t, svc, "101,2020,,2024,,,P,false\n", false)
	ierr := assertImportErrKind(t, err, ImportErrRequiredFieldEmpty)
	if ierr.Field != "check_date" || ierr.Row != 2 {
		t.Errorf("期望 check_date/行2，实际: %s/行%d", ierr.Field, ierr.Row)
	}
}

func TestImportService_RequiredIsPregnantEmpty(t *testing.T) {
	svc, _, _ := setupImportService(NewEIDFirstMatcher())

	err := importCSV(t, svc, "101,2020,,2024,2024-09-15,,,false\n", false)
	ierr := assertImportErrKind(t, err, ImportErrRequiredFieldEmpty)
	if ierr.Field != "is_pregnant" {
		t.Errorf("期望字段 is_pregnant，实际: %s", ierr.Field)
	}
}

func TestImportService_InvalidPregCode(t *testing.T) {
	svc, _, _ := setupImportService(NewEIDFirstMatcher())

	err := importCSV(t, svc, "101,2020,,2024,2024-09-15,,maybe,false\n", false)
	ierr := assertImportErrKind(t, err, ImportErrInvalidValue)
	if ierr.Field != "is_pregnant" || ierr.Row != 2 {
		t.Errorf("期望 is_pregnant/行2，实际: %s/行%d", ierr.Field, ierr.Row)
	}
}

func TestImportService_BlankRowsDroppedRowNumbersPreserved(t *testing.T) {
	svc, _, _ := setupImportService(NewEIDFirstMatcher())

	// 第 3 行全空白，第 4 行非法值：错误应指向源文件第 4 行
	rows := "101,2020,,2024,2024-09-15,,P,false\n" +
		",,,,,,,\n" +
		"102,2019,,2024,2024-09-15,,maybe,false\n"
	err := importCSV(t, svc, rows, false)
	ierr := assertImportErrKind(t, err, ImportErrInvalidValue)
	if ierr.Row != 4 {
		t.Errorf("空白行剔除后行号不应重排，期望行4，实际: 行%d", ierr.Row)
	}
}

// ── 重复扫描 ──

func TestImportService_DuplicateTagRows(t *testing.T) {
	svc, _, pregRepo := setupImportService(NewEIDFirstMatcher())

	rows := "101,2020,,2024,2024-09-15,,P,false\n" +
		"101,2020,,2024,2024-09-15,,O,false\n"
	err := importCSV(t, svc, rows, false)

	ierr := assertImportErrKind(t, err, ImportErrDuplicateRecords)
	if len(ierr.Duplicates) != 1 {
		t.Fatalf("期望 1 组重复，实际: %d", len(ierr.Duplicates))
	}
	g := ierr.Duplicates[0]
	if len(g.Rows) != 2 || g.Rows[0] != 2 || g.Rows[1] != 3 {
		t.Errorf("重复组应含行 2 与行 3，实际: %v", g.Rows)
	}
	if len(pregRepo.checks) != 0 {
		t.Errorf("重复校验失败不应有任何写入，实际: %d 条", len(pregRepo.checks))
	}
}

func TestImportService_DuplicateEIDAcrossDifferentTags(t *testing.T) {
	svc, _, _ := setupImportService(NewEIDFirstMatcher())

	// 耳标不同但同一电子耳标同日两条记录，仍判重复
	rows := "101,2020,982000123,2024,2024-09-15,,P,false\n" +
		"205,2019,982000123,2024,2024-09-15,,O,false\n"
	err := importCSV(t, svc, rows, false)

	ierr := assertImportErrKind(t, err, ImportErrDuplicateRecords)
	if len(ierr.Duplicates) != 1 {
		t.Fatalf("期望 1 组重复，实际: %d", len(ierr.Duplicates))
	}
	if !strings.Contains(ierr.Duplicates[0].KeyDesc, "982000123") {
		t.Errorf("重复键应点名电子耳标，实际: %s", ierr.Duplicates[0].KeyDesc)
	}
}

func TestImportService_EmptyEIDsNeverDuplicate(t *testing.T) {
	svc, _, _ := setupImportService(NewEIDFirstMatcher())

	// 两行电子耳标均空、同日，不构成 EID 维度重复
	rows := "101,2020,,2024,2024-09-15,,P,false\n" +
		"205,2019,,2024,2024-09-15,,O,false\n"
	if err := importCSV(t, svc, rows, false); err != nil {
		t.Fatalf("空电子耳标不应判重: %v", err)
	}
}

func TestImportService_MissingBirthYearExemptFromTagScan(t *testing.T) {
	svc, _, pregRepo := setupImportService(NewEIDFirstMatcher())

	// 键字段缺失的行豁免该维度：同耳标同日但出生年均空，不判耳标维度重复
	rows := "123,,,2024,2024-03-15,,P,false\n" +
		"123,,,2024,2024-03-15,,O,false\n"
	if err := importCSV(t, svc, rows, false); err != nil {
		t.Fatalf("出生年缺失不应判耳标维度重复: %v", err)
	}
	if len(pregRepo.checks) != 2 {
		t.Errorf("期望落库 2 条检查，实际: %d", len(pregRepo.checks))
	}
}

func TestImportService_BothDimensionsCombined(t *testing.T) {
	svc, _, _ := setupImportService(NewEIDFirstMatcher())

	// 行2/3 耳标维度重复，行4/5 EID 维度重复：一次错误返回两组
	rows := "101,2020,,2024,2024-09-15,,P,false\n" +
		"101,2020,,2024,2024-09-15,,O,false\n" +
		"301,2018,982000777,2024,2024-10-01,,P,false\n" +
		"302,2017,982000777,2024,2024-10-01,,O,false\n"
	err := importCSV(t, svc, rows, false)

	ierr := assertImportErrKind(t, err, ImportErrDuplicateRecords)
	if len(ierr.Duplicates) != 2 {
		t.Fatalf("期望两个维度共 2 组重复，实际: %d", len(ierr.Duplicates))
	}
}

// ── 落库失败与回滚决策 ──

func TestImportService_RowErrorFailsWholeImport(t *testing.T) {
	svc, cowRepo, _ := setupImportService(NewEIDFirstMatcher())

	// 预置档案：电子耳标 982000123 属于耳标 201
	eid := "982000123"
	year := 2018
	_ = cowRepo.Create(context.Background(), &model.Cow{EarTagID: "201", BirthYear: &year, EID: &eid})

	// 行上同一电子耳标却写着耳标 999 → 标识冲突
	rows := "999,2020,982000123,2024,2024-09-15,,P,false\n"
	err := importCSV(t, svc, rows, false)

	ierr := assertImportErrKind(t, err, ImportErrImportFailed)
	if len(ierr.RowErrors) != 1 {
		t.Fatalf("期望 1 条行级错误，实际: %d", len(ierr.RowErrors))
	}
	if !strings.Contains(ierr.RowErrors[0], "第 2 行") {
		t.Errorf("行级错误应带行号，实际: %s", ierr.RowErrors[0])
	}
	if !strings.Contains(ierr.Message, "共 1 行出错") {
		t.Errorf("摘要应含错误总数，实际: %s", ierr.Message)
	}
}

func TestImportService_DryRunReturnsSameStats(t *testing.T) {
	rows := "101,2020,,2024,2024-09-15,,P,false\n" +
		"102,2019,,2024,2024-09-15,,O,false\n"

	drySvc, _, _ := setupImportService(NewEIDFirstMatcher())
	dryResult, err := drySvc.ImportFromFile(context.Background(),
		strings.NewReader(importHeader+rows), "herd.csv", true)
	if err != nil {
		t.Fatalf("试运行应成功: %v", err)
	}

	realSvc, _, _ := setupImportService(NewEIDFirstMatcher())
	realResult, err := realSvc.ImportFromFile(context.Background(),
		strings.NewReader(importHeader+rows), "herd.csv", false)
	if err != nil {
		t.Fatalf("真实导入应成功: %v", err)
	}

	if !dryResult.DryRun {
		t.Error("试运行结果应标记 DryRun")
	}
	if dryResult.CowsCreated != realResult.CowsCreated ||
		dryResult.PregChecksCreated != realResult.PregChecksCreated {
		t.Errorf("试运行统计应与真实导入一致，试运行: %+v，真实: %+v", dryResult, realResult)
	}
}

// ── 匹配策略差异 ──

func TestImportService_EIDFirstDoesNotBackfill(t *testing.T) {
	svc, cowRepo, _ := setupImportService(NewEIDFirstMatcher())

	year := 2020
	_ = cowRepo.Create(context.Background(), &model.Cow{EarTagID: "101", BirthYear: &year})

	result, err := svc.ImportFromFile(context.Background(),
		strings.NewReader(importHeader+"101,2020,982000555,2024,2024-09-15,,P,false\n"),
		"herd.csv", false)
	if err != nil {
		t.Fatalf("导入应成功: %v", err)
	}
	if result.CowsCreated != 0 || result.CowsUpdated != 0 {
		t.Errorf("应匹配既有档案且不回填，实际: created=%d updated=%d", result.CowsCreated, result.CowsUpdated)
	}
	if cowRepo.cows[1].EID != nil {
		t.Errorf("新版策略不应回填 EID，实际: %v", *cowRepo.cows[1].EID)
	}
}

func TestImportService_LegacyBackfillsEID(t *testing.T) {
	svc, cowRepo, _ := setupImportService(NewLegacyMatcher())

	year := 2020
	_ = cowRepo.Create(context.Background(), &model.Cow{EarTagID: "101", BirthYear: &year})

	result, err := svc.ImportFromFile(context.Background(),
		strings.NewReader(importHeader+"101,2020,982000555,2024,2024-09-15,,P,false\n"),
		"herd.csv", false)
	if err != nil {
		t.Fatalf("导入应成功: %v", err)
	}
	if result.CowsUpdated != 1 {
		t.Errorf("旧版策略应回填 EID 并计入更新，实际: %d", result.CowsUpdated)
	}
	if cowRepo.cows[1].EID == nil || *cowRepo.cows[1].EID != "982000555" {
		t.Errorf("档案 EID 应被回填，实际: %v", cowRepo.cows[1].EID)
	}
}

func TestImportService_NoIdentityCreatesUnownedCheck(t *testing.T) {
	svc, cowRepo, pregRepo := setupImportService(NewEIDFirstMatcher())

	result, err := svc.ImportFromFile(context.Background(),
		strings.NewReader(importHeader+",,,2024,2024-09-15,走失牛,P,false\n"),
		"herd.csv", false)
	if err != nil {
		t.Fatalf("导入应成功: %v", err)
	}
	if result.CowsCreated != 0 {
		t.Errorf("无标识行不应建档，实际: %d", result.CowsCreated)
	}
	if len(cowRepo.cows) != 0 {
		t.Errorf("不应有牛只落库，实际: %d", len(cowRepo.cows))
	}
	if pregRepo.checks[1] == nil || pregRepo.checks[1].CowID != nil {
		t.Error("检查记录应无主落库")
	}
}
