package service

import (
	"fmt"
	"strings"
)

// ── 导入校验失败类别 ──
//
// 导入管线的每个阶段都是硬门槛，任一阶段失败即整体终止且不留部分写入。
// 失败以 *ImportError 返回，携带足够细节（列名、行号、键值）供用户
// 修正源文件后重新上传。

// ImportErrorKind 导入失败类别
type ImportErrorKind string

const (
	ImportErrUnsupportedFormat  ImportErrorKind = "unsupported_format"
	ImportErrEmptyFile          ImportErrorKind = "empty_file"
	ImportErrMissingColumns     ImportErrorKind = "missing_columns"
	ImportErrRequiredFieldEmpty ImportErrorKind = "required_field_empty"
	ImportErrInvalidValue       ImportErrorKind = "invalid_value"
	ImportErrDuplicateRecords   ImportErrorKind = "duplicate_records"
	ImportErrImportFailed       ImportErrorKind = "import_failed"
)

// DuplicateGroup 一组逻辑重复的行
type DuplicateGroup struct {
	// KeyDesc 重复键的人类可读描述，如 "耳标: 123, 出生年: 2020, 检查日期: 2024-03-15"
	KeyDesc string `json:"key"`
	// Rows 原始文件行号（表头为第 1 行，首条数据行为第 2 行）
	Rows []int `json:"rows"`
}

// ImportError 导入校验失败
type ImportError struct {
	Kind    ImportErrorKind
	Message string

	// MissingColumns Kind 为 missing_columns 时列出全部缺失列
	MissingColumns []string
	// Field Kind 为 required_field_empty / invalid_value 时的字段名
	Field string
	// Row Kind 为 required_field_empty / invalid_value 时的原始行号
	Row int
	// Duplicates Kind 为 duplicate_records 时两个维度的全部重复组
	Duplicates []DuplicateGroup
	// RowErrors Kind 为 import_failed 时的全部行级错误
	RowErrors []string
}

func (e *ImportError) Error() string { return e.Message }

// ── 构造函数 ──

func errUnsupportedFormat(filename string) *ImportError {
	return &ImportError{
		Kind:    ImportErrUnsupportedFormat,
		Message: fmt.Sprintf("不支持的文件格式: %s（支持 .xlsx / .xlsm / .csv）", filename),
	}
}

func errEmptyFile() *ImportError {
	return &ImportError{
		Kind:    ImportErrEmptyFile,
		Message: "文件为空或没有数据行",
	}
}

func errMissingColumns(columns []string) *ImportError {
	return &ImportError{
		Kind:           ImportErrMissingColumns,
		Message:        fmt.Sprintf("缺少必需列: %s", strings.Join(columns, ", ")),
		MissingColumns: columns,
	}
}

func errRequiredFieldEmpty(row int, field string) *ImportError {
	return &ImportError{
		Kind:    ImportErrRequiredFieldEmpty,
		Message: fmt.Sprintf("第 %d 行: 必填字段 %s 为空", row, field),
		Field:   field,
		Row:     row,
	}
}

func errInvalidValue(row int, field, value string) *ImportError {
	return &ImportError{
		Kind:    ImportErrInvalidValue,
		Message: fmt.Sprintf("第 %d 行: 字段 %s 的值 %q 无法解析", row, field, value),
		Field:   field,
		Row:     row,
	}
}

// maxDuplicateGroupsShown 错误消息中最多展示的重复组数，防止超大文件刷屏
const maxDuplicateGroupsShown = 10

func errDuplicateRecords(groups []DuplicateGroup) *ImportError {
	var b strings.Builder
	fmt.Fprintf(&b, "发现 %d 组重复记录:", len(groups))
	for i, g := range groups {
		if i >= maxDuplicateGroupsShown {
			fmt.Fprintf(&b, "\n  ... 另有 %d 组", len(groups)-maxDuplicateGroupsShown)
			break
		}
		rows := make([]string, len(g.Rows))
		for j, r := range g.Rows {
			rows[j] = fmt.Sprintf("%d", r)
		}
		fmt.Fprintf(&b, "\n  - %s（行: %s）", g.KeyDesc, strings.Join(rows, ", "))
	}
	return &ImportError{
		Kind:       ImportErrDuplicateRecords,
		Message:    b.String(),
		Duplicates: groups,
	}
}

// maxRowErrorsShown 失败摘要中最多展示的行级错误数
const maxRowErrorsShown = 5

func errImportFailed(rowErrors []string) *ImportError {
	shown := rowErrors
	if len(shown) > maxRowErrorsShown {
		shown = shown[:maxRowErrorsShown]
	}
	msg := fmt.Sprintf("导入失败，共 %d 行出错:\n%s", len(rowErrors), strings.Join(shown, "\n"))
	if len(rowErrors) > maxRowErrorsShown {
		msg += fmt.Sprintf("\n... 另有 %d 条错误", len(rowErrors)-maxRowErrorsShown)
	}
	return &ImportError{
		Kind:      ImportErrImportFailed,
		Message:   msg,
		RowErrors: rowErrors,
	}
}
