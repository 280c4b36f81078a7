package dto

// ── 牛只模块请求 ──

// CowSearchRequest 牛只检索参数（耳标 / 电子耳标 / 出生年任意组合）
type CowSearchRequest struct {
	EarTagID  string `form:"ear_tag_id"`
	RFID      string `form:"rfid"`
	BirthYear *int   `form:"birth_year" binding:"omitempty,min=1900,max=2100"`
}

// CreateCowRequest 创建牛只请求
type CreateCowRequest struct {
	EarTagID  string  `json:"ear_tag_id" binding:"required,max=10"`
	BirthYear *int    `json:"birth_year" binding:"omitempty,min=1900,max=2100"`
	RFID      *string `json:"rfid"       binding:"omitempty,max=20"`
	Comments  string  `json:"comments"`
}

// UpdateCowRequest 更新牛只请求（仅更新非 nil 字段）
type UpdateCowRequest struct {
	BirthYear *int    `json:"birth_year" binding:"omitempty,min=1900,max=2100"`
	RFID      *string `json:"rfid"       binding:"omitempty,max=20"`
	Comments  *string `json:"comments"`
}

// ── 牛只模块响应 ──

// CowResponse 牛只信息响应
type CowResponse struct {
	ID        uint    `json:"id"`
	EarTagID  string  `json:"ear_tag_id"`
	BirthYear *int    `json:"birth_year,omitempty"`
	RFID      *string `json:"rfid,omitempty"`
	Comments  string  `json:"comments"`
}

// CowExistsResponse 耳标存在性检查响应
type CowExistsResponse struct {
	Exists          bool `json:"exists"`
	MultipleMatches bool `json:"multiple_matches,omitempty"`
}

// CowSearchResponse 牛只检索响应
//
// DistinctBirthYears 用于前端在同耳标多头牛时给出出生年选项。
type CowSearchResponse struct {
	Cows               []CowResponse `json:"cows"`
	MultipleMatches    bool          `json:"multiple_matches"`
	DistinctBirthYears []int         `json:"distinct_birth_years"`
}

// [自证通过] internal/dto/cow.go
