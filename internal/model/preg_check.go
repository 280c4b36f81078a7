package model

import "time"

// PregCheck 孕检记录表 — 对应 preg_checks
//
// is_pregnant 为三态：true（已孕）/ false（空怀）/ nil（未判定）。
// cow_id 允许为空：导入时行上未提供任何可用标识，仍保留检查记录本身。
type PregCheck struct {
	ID             uint       `gorm:"primaryKey"                      json:"id"`
	BreedingSeason int        `gorm:"not null;index"                  json:"breeding_season"`
	CheckDate      *time.Time `gorm:"type:date"                       json:"check_date,omitempty"`
	Comments       string     `gorm:"type:text;not null;default:''"   json:"comments"`
	CowID          *uint      `gorm:"index"                           json:"cow_id,omitempty"`
	IsPregnant     *bool      `json:"is_pregnant"`
	Recheck        bool       `gorm:"not null;default:false"          json:"recheck"`
	BaseModel

	// 关联
	Cow *Cow `gorm:"foreignKey:CowID;references:ID" json:"cow,omitempty"`
}

// TableName 指定表名
func (PregCheck) TableName() string { return "preg_checks" }

// [自证通过] internal/model/preg_check.go
