package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pwbryant/ranch-tools-application/internal/dto"
	"github.com/pwbryant/ranch-tools-application/internal/model"
	"github.com/pwbryant/ranch-tools-application/internal/repository"
	pkgerrors "github.com/pwbryant/ranch-tools-application/pkg/errors"
)

// ── 测试辅助 ──

func setupTestCowService() (*CowService, *mockCowRepo) {
	cowRepo := newMockCowRepo()
	repo := &repository.Repository{
		Cow:            cowRepo,
		PregCheck:      newMockPregCheckRepo(),
		BreedingSeason: newMockBreedingSeasonRepo(2024),
	}
	return NewCowService(repo, zap.NewNop()), cowRepo
}

func createTestCow(cowRepo *mockCowRepo, tag string, year int, eid string) *model.Cow {
	cow := &model.Cow{EarTagID: tag}
	if year != 0 {
		cow.BirthYear = &year
	}
	if eid != "" {
		cow.EID = &eid
	}
	_ = cowRepo.Create(context.Background(), cow)
	return cow
}

// ── Search 测试 ──

func TestCowService_Search_ByTag(t *testing.T) {
	svc, cowRepo := setupTestCowService()
	createTestCow(cowRepo, "101", 2020, "")
	createTestCow(cowRepo, "101", 2015, "")

	result, err := svc.Search(context.Background(), &dto.CowSearchRequest{EarTagID: "101"})
	if err != nil {
		t.Fatalf("Search 应成功: %v", err)
	}
	if len(result.Cows) != 2 {
		t.Errorf("期望 2 头牛，实际: %d", len(result.Cows))
	}
	if !result.MultipleMatches {
		t.Error("同耳标多头牛应标记 MultipleMatches")
	}
	if len(result.DistinctBirthYears) != 2 {
		t.Errorf("期望 2 个出生年选项，实际: %v", result.DistinctBirthYears)
	}
}

func TestCowService_Search_ConflictingIdentity(t *testing.T) {
	svc, cowRepo := setupTestCowService()
	createTestCow(cowRepo, "101", 2020, "982000123")

	_, err := svc.Search(context.Background(), &dto.CowSearchRequest{
		EarTagID: "999",
		RFID:     "982000123",
	})
	if !errors.Is(err, pkgerrors.ErrAmbiguousIdentity) {
		t.Errorf("耳标与电子耳标指向不同牛只应报错，实际: %v", err)
	}
}

func TestCowService_Search_NoMatch(t *testing.T) {
	svc, _ := setupTestCowService()

	result, err := svc.Search(context.Background(), &dto.CowSearchRequest{EarTagID: "404"})
	if err != nil {
		t.Fatalf("Search 应成功: %v", err)
	}
	if len(result.Cows) != 0 || result.MultipleMatches {
		t.Errorf("无匹配应返回空列表，实际: %+v", result)
	}
}

// ── Exists 测试 ──

func TestCowService_Exists(t *testing.T) {
	svc, cowRepo := setupTestCowService()
	createTestCow(cowRepo, "101", 2020, "")
	createTestCow(cowRepo, "101", 2015, "")

	result, err := svc.Exists(context.Background(), "101", nil)
	if err != nil {
		t.Fatalf("Exists 应成功: %v", err)
	}
	if !result.Exists || !result.MultipleMatches {
		t.Errorf("期望存在且多匹配，实际: %+v", result)
	}

	year := 2020
	result, err = svc.Exists(context.Background(), "101", &year)
	if err != nil {
		t.Fatalf("Exists 应成功: %v", err)
	}
	if !result.Exists || result.MultipleMatches {
		t.Errorf("限定出生年应唯一匹配，实际: %+v", result)
	}

	result, _ = svc.Exists(context.Background(), "404", nil)
	if result.Exists {
		t.Error("不存在的耳标不应报存在")
	}
}

// ── Create / Update 测试 ──

func TestCowService_Create_DuplicateRejected(t *testing.T) {
	svc, cowRepo := setupTestCowService()
	createTestCow(cowRepo, "101", 2020, "")

	year := 2020
	_, err := svc.Create(context.Background(), &dto.CreateCowRequest{EarTagID: "101", BirthYear: &year})
	if !errors.Is(err, pkgerrors.ErrCowExists) {
		t.Errorf("期望 ErrCowExists，实际: %v", err)
	}

	// 同耳标不同出生年允许建档
	otherYear := 2015
	cow, err := svc.Create(context.Background(), &dto.CreateCowRequest{EarTagID: "101", BirthYear: &otherYear})
	if err != nil {
		t.Fatalf("不同出生年应可建档: %v", err)
	}
	if cow.BirthYear == nil || *cow.BirthYear != 2015 {
		t.Errorf("期望出生年 2015，实际: %v", cow.BirthYear)
	}
}

func TestCowService_Update_PartialFields(t *testing.T) {
	svc, cowRepo := setupTestCowService()
	createTestCow(cowRepo, "101", 2020, "")

	rfid := "982000123"
	result, err := svc.Update(context.Background(), 1, &dto.UpdateCowRequest{RFID: &rfid})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.RFID == nil || *result.RFID != rfid {
		t.Errorf("RFID 应被更新，实际: %v", result.RFID)
	}
	if result.BirthYear == nil || *result.BirthYear != 2020 {
		t.Errorf("未提交的字段不应改变，实际: %v", result.BirthYear)
	}

	// 提交空串清除 RFID
	empty := ""
	result, err = svc.Update(context.Background(), 1, &dto.UpdateCowRequest{RFID: &empty})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.RFID != nil {
		t.Errorf("空串应清除 RFID，实际: %v", *result.RFID)
	}
}

func TestCowService_Update_NotFound(t *testing.T) {
	svc, _ := setupTestCowService()

	comments := "x"
	_, err := svc.Update(context.Background(), 404, &dto.UpdateCowRequest{Comments: &comments})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望 ErrRecordNotFound，实际: %v", err)
	}
}
