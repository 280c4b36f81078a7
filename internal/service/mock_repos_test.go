package service

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/pwbryant/ranch-tools-application/internal/model"
)

// ── Mock CowRepository ──

type mockCowRepo struct {
	cows   map[uint]*model.Cow
	nextID uint

	createErr error // 非 nil 时 Create 直接返回该错误
}

func newMockCowRepo() *mockCowRepo {
	return &mockCowRepo{cows: make(map[uint]*model.Cow), nextID: 1}
}

func (m *mockCowRepo) Create(_ context.Context, cow *model.Cow) error {
	if m.createErr != nil {
		return m.createErr
	}
	cow.ID = m.nextID
	m.nextID++
	cp := *cow
	m.cows[cow.ID] = &cp
	return nil
}

func (m *mockCowRepo) GetByID(_ context.Context, id uint) (*model.Cow, error) {
	if c, ok := m.cows[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCowRepo) Update(_ context.Context, cow *model.Cow) error {
	if _, ok := m.cows[cow.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *cow
	m.cows[cow.ID] = &cp
	return nil
}

func (m *mockCowRepo) GetByEID(_ context.Context, eid string) (*model.Cow, error) {
	for _, c := range m.sorted() {
		if c.EID != nil && *c.EID == eid {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCowRepo) GetByTagAndYear(_ context.Context, earTagID string, birthYear *int) (*model.Cow, error) {
	for _, c := range m.sorted() {
		if c.EarTagID != earTagID {
			continue
		}
		if birthYear == nil && c.BirthYear == nil {
			cp := *c
			return &cp, nil
		}
		if birthYear != nil && c.BirthYear != nil && *birthYear == *c.BirthYear {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCowRepo) FirstOrCreateByTagAndYear(ctx context.Context, cow *model.Cow) (bool, error) {
	existing, err := m.GetByTagAndYear(ctx, cow.EarTagID, cow.BirthYear)
	if err == nil {
		*cow = *existing
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}
	if err := m.Create(ctx, cow); err != nil {
		return false, err
	}
	return true, nil
}

func (m *mockCowRepo) ListByTag(_ context.Context, earTagID string) ([]model.Cow, error) {
	var result []model.Cow
	for _, c := range m.sorted() {
		if c.EarTagID == earTagID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCowRepo) Search(_ context.Context, earTagID, rfid string, birthYear *int) ([]model.Cow, error) {
	if earTagID == "" && rfid == "" {
		return nil, nil
	}
	seen := make(map[uint]bool)
	var result []model.Cow
	for _, c := range m.sorted() {
		match := false
		if earTagID != "" && c.EarTagID == earTagID {
			if birthYear == nil || (c.BirthYear != nil && *c.BirthYear == *birthYear) {
				match = true
			}
		}
		if rfid != "" && c.EID != nil && *c.EID == rfid {
			match = true
		}
		if match && !seen[c.ID] {
			seen[c.ID] = true
			result = append(result, *c)
		}
	}
	return result, nil
}

// sorted 按 ID 升序返回，保证遍历顺序确定
func (m *mockCowRepo) sorted() []*model.Cow {
	ids := make([]uint, 0, len(m.cows))
	for id := range m.cows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]*model.Cow, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.cows[id])
	}
	return result
}

// ── Mock PregCheckRepository ──

type mockPregCheckRepo struct {
	checks map[uint]*model.PregCheck
	nextID uint

	cowRepo   *mockCowRepo // 非 nil 时 List 系列方法附带 Cow 关联
	createErr error
}

func newMockPregCheckRepo() *mockPregCheckRepo {
	return &mockPregCheckRepo{checks: make(map[uint]*model.PregCheck), nextID: 1}
}

func (m *mockPregCheckRepo) Create(_ context.Context, check *model.PregCheck) error {
	if m.createErr != nil {
		return m.createErr
	}
	check.ID = m.nextID
	m.nextID++
	cp := *check
	m.checks[check.ID] = &cp
	return nil
}

func (m *mockPregCheckRepo) GetByID(_ context.Context, id uint) (*model.PregCheck, error) {
	if c, ok := m.checks[id]; ok {
		cp := *c
		m.attachCow(&cp)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPregCheckRepo) Update(_ context.Context, check *model.PregCheck) error {
	if _, ok := m.checks[check.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *check
	m.checks[check.ID] = &cp
	return nil
}

func (m *mockPregCheckRepo) ListBySeason(_ context.Context, breedingSeason int) ([]model.PregCheck, error) {
	var result []model.PregCheck
	for _, c := range m.sorted() {
		if c.BreedingSeason == breedingSeason {
			cp := *c
			m.attachCow(&cp)
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockPregCheckRepo) ListByCowIDs(_ context.Context, cowIDs []uint) ([]model.PregCheck, error) {
	idSet := make(map[uint]bool, len(cowIDs))
	for _, id := range cowIDs {
		idSet[id] = true
	}
	var result []model.PregCheck
	for _, c := range m.sorted() {
		if c.CowID != nil && idSet[*c.CowID] {
			cp := *c
			m.attachCow(&cp)
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockPregCheckRepo) ListRecent(ctx context.Context, breedingSeason, limit int) ([]model.PregCheck, error) {
	checks, err := m.ListBySeason(ctx, breedingSeason)
	if err != nil {
		return nil, err
	}
	if len(checks) > limit {
		checks = checks[len(checks)-limit:]
	}
	return checks, nil
}

func (m *mockPregCheckRepo) CountByCowAndSeason(_ context.Context, cowID uint, breedingSeason int) (int64, error) {
	var count int64
	for _, c := range m.checks {
		if c.CowID != nil && *c.CowID == cowID && c.BreedingSeason == breedingSeason {
			count++
		}
	}
	return count, nil
}

func (m *mockPregCheckRepo) ListAllWithCow(_ context.Context) ([]model.PregCheck, error) {
	var result []model.PregCheck
	for _, c := range m.sorted() {
		cp := *c
		m.attachCow(&cp)
		result = append(result, cp)
	}
	return result, nil
}

func (m *mockPregCheckRepo) DistinctSeasons(_ context.Context) ([]int, error) {
	seen := make(map[int]bool)
	var seasons []int
	for _, c := range m.checks {
		if !seen[c.BreedingSeason] {
			seen[c.BreedingSeason] = true
			seasons = append(seasons, c.BreedingSeason)
		}
	}
	sort.Ints(seasons)
	return seasons, nil
}

func (m *mockPregCheckRepo) LatestSeason(_ context.Context) (int, error) {
	sorted := m.sorted()
	if len(sorted) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return sorted[len(sorted)-1].BreedingSeason, nil
}

func (m *mockPregCheckRepo) attachCow(check *model.PregCheck) {
	if m.cowRepo == nil || check.CowID == nil {
		return
	}
	if cow, ok := m.cowRepo.cows[*check.CowID]; ok {
		cp := *cow
		check.Cow = &cp
	}
}

func (m *mockPregCheckRepo) sorted() []*model.PregCheck {
	ids := make([]uint, 0, len(m.checks))
	for id := range m.checks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]*model.PregCheck, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.checks[id])
	}
	return result
}

// ── Mock BreedingSeasonRepository ──

type mockBreedingSeasonRepo struct {
	season int
}

func newMockBreedingSeasonRepo(season int) *mockBreedingSeasonRepo {
	return &mockBreedingSeasonRepo{season: season}
}

func (m *mockBreedingSeasonRepo) Load(_ context.Context) (*model.CurrentBreedingSeason, error) {
	return &model.CurrentBreedingSeason{ID: 1, BreedingSeason: m.season}, nil
}

func (m *mockBreedingSeasonRepo) Update(_ context.Context, breedingSeason int) error {
	m.season = breedingSeason
	return nil
}
