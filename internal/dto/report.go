package dto

// ── 报表模块响应 ──

// SeasonSummaryResponse 单配种季汇总统计
//
// 口径与历史系统一致：
//   - first_check_* 为首检（非复检）计数
//   - total_open = first_check_open - recheck_pregnant
//     （首检空怀后复检转孕的牛，从空怀总数中扣除）
type SeasonSummaryResponse struct {
	BreedingSeason     int     `json:"breeding_season"`
	FirstCheckPregnant int     `json:"first_check_pregnant"`
	RecheckPregnant    int     `json:"recheck_pregnant"`
	TotalPregnant      int     `json:"total_pregnant"`
	FirstCheckOpen     int     `json:"first_check_open"`
	RecheckOpen        int     `json:"recheck_open"`
	TotalOpen          int     `json:"total_open"`
	TotalCount         int     `json:"total_count"`
	PregnancyRate      float64 `json:"pregnancy_rate"`
}

// BirthYearRow 按出生年分组的统计行
//
// BirthYear 为 nil 表示无主检查或出生年未知的牛。
type BirthYearRow struct {
	BirthYear         *int    `json:"birth_year"`
	FirstPassPregnant int     `json:"first_pass_pregnant"`
	FirstPassOpen     int     `json:"first_pass_open"`
	PregRecheckCount  int     `json:"preg_recheck_count"`
	OpenRecheckCount  int     `json:"open_recheck_count"`
	TotalPregnant     int     `json:"total_pregnant"`
	TotalOpen         int     `json:"total_open"`
	TotalCount        int     `json:"total_count"`
	PctPregnant       float64 `json:"pct_pregnant"`
}

// BirthYearBreakdownResponse 按出生年分组的配种季报表
type BirthYearBreakdownResponse struct {
	BreedingSeason int            `json:"breeding_season"`
	Rows           []BirthYearRow `json:"rows"`
}

// SeasonRate 单配种季受孕率
type SeasonRate struct {
	BreedingSeason int     `json:"breeding_season"`
	PregnancyRate  float64 `json:"pregnancy_rate"`
	TotalCount     int     `json:"total_count"`
}

// RollingAverageResponse 滚动多季平均受孕率
type RollingAverageResponse struct {
	EndSeason   int          `json:"end_season"`
	Window      int          `json:"window"`
	Seasons     []SeasonRate `json:"seasons"`
	AverageRate float64      `json:"average_rate"`
}

// [自证通过] internal/dto/report.go
