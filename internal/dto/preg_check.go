package dto

// ── 孕检模块请求 ──

// RecordPregCheckRequest 录入孕检请求
//
// 耳标 / 电子耳标 / 出生年用于定位牛只，三者均空则记录无主检查。
// Recheck 为 nil 时由服务端推断：该牛本配种季已有检查则视为复检。
type RecordPregCheckRequest struct {
	EarTagID       string  `json:"ear_tag_id"`
	RFID           string  `json:"rfid"`
	BirthYear      *int    `json:"birth_year"      binding:"omitempty,min=1900,max=2100"`
	BreedingSeason int     `json:"breeding_season" binding:"required,min=1900,max=2100"`
	CheckDate      string  `json:"check_date"      binding:"required"`
	IsPregnant     *bool   `json:"is_pregnant"     binding:"required"`
	Recheck        *bool   `json:"recheck"`
	Comments       string  `json:"comments"`
}

// EditPregCheckRequest 编辑孕检请求（仅更新非 nil 字段）
type EditPregCheckRequest struct {
	IsPregnant *bool   `json:"is_pregnant"`
	Recheck    *bool   `json:"recheck"`
	Comments   *string `json:"comments"`
}

// PregCheckSearchRequest 孕检检索参数
//
// BreedingSeason 非空时按配种季列出全部记录，忽略其余条件；
// 否则 EarTagID 或 RFID 为字面量 "all" 时返回当前配种季全部记录。
type PregCheckSearchRequest struct {
	EarTagID       string `form:"search_ear_tag_id"`
	RFID           string `form:"search_rfid"`
	BirthYear      *int   `form:"search_birth_year" binding:"omitempty,min=1900,max=2100"`
	BreedingSeason *int   `form:"breeding_season"   binding:"omitempty,min=1900,max=2100"`
}

// UpdateBreedingSeasonRequest 更新当前配种季请求
type UpdateBreedingSeasonRequest struct {
	BreedingSeason int `json:"breeding_season" binding:"required,min=1900,max=2100"`
}

// ── 孕检模块响应 ──

// PregCheckResponse 孕检记录响应
type PregCheckResponse struct {
	ID             uint         `json:"id"`
	BreedingSeason int          `json:"breeding_season"`
	CheckDate      string       `json:"check_date,omitempty"`
	IsPregnant     *bool        `json:"is_pregnant"`
	Recheck        bool         `json:"recheck"`
	Comments       string       `json:"comments"`
	Cow            *CowResponse `json:"cow,omitempty"`
}

// BreedingSeasonResponse 当前配种季响应
type BreedingSeasonResponse struct {
	BreedingSeason int `json:"breeding_season"`
}

// [自证通过] internal/dto/preg_check.go
