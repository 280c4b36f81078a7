package service

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ── 导入文件解析器 ──────────────────────────────────────────
//
// 职责：将上传的表格文件（.xlsx/.xlsm 工作簿或 .csv 分隔文本）解析为
// 带原始行号的文本单元格，再逐行归一化为 importRecord。
//
// 设计决策：
//   - 所有单元格一律按原始文本读取，耳标/电子耳标保留前导零
//   - 行号以原始文件为准：表头为第 1 行，首条数据行为第 2 行，
//     空白行剔除后行号不重排，错误消息始终指向源文件
//   - Excel 日期列可能是序列号（RawCellValue），按序列号转日历日期
// ─────────────────────────────────────────────────────────────

// requiredColumns 必需列（与历史系统表头逐字对齐，区分大小写）
var requiredColumns = []string{
	"ear_tag_id", "birth_year", "eid", "breeding_season",
	"check_date", "comments", "is_pregnant", "recheck",
}

// importRawRow 解析阶段的一行：原始行号 + 列名到原始文本的映射
type importRawRow struct {
	num   int
	cells map[string]string
}

// importRecord 归一化后的一行
type importRecord struct {
	num            int
	earTagID       string
	birthYear      *int
	eid            string
	breedingSeason *int
	checkDate      *time.Time
	comments       string
	isPregnant     *bool
	recheck        bool
}

// parseImportFile 按文件名后缀选择解析器，返回表头与数据行
func parseImportFile(r io.Reader, filename string) ([]string, []importRawRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(r)
	case ".xlsx", ".xlsm":
		return parseWorkbook(r)
	default:
		return nil, nil, errUnsupportedFormat(filename)
	}
}

// parseCSV 解析逗号分隔文本
func parseCSV(r io.Reader) ([]string, []importRawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // 容忍行内列数不齐
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, &ImportError{
			Kind:    ImportErrUnsupportedFormat,
			Message: "CSV 解析失败: " + err.Error(),
		}
	}
	if len(records) == 0 {
		return nil, nil, errEmptyFile()
	}

	header := normalizeHeader(records[0])
	rows := make([]importRawRow, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		rows = append(rows, rawRowFromCells(header, records[i], i+1))
	}
	return header, rows, nil
}

// parseWorkbook 解析 Excel 工作簿（取第一个工作表）
func parseWorkbook(r io.Reader) ([]string, []importRawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, &ImportError{
			Kind:    ImportErrUnsupportedFormat,
			Message: "Excel 解析失败: " + err.Error(),
		}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, errEmptyFile()
	}

	// RawCellValue: 数值单元格取原始值，避免显示格式截断耳标前导零之外的内容；
	// 日期列因此可能是序列号文本，归一化阶段按序列号转换
	cells, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, &ImportError{
			Kind:    ImportErrUnsupportedFormat,
			Message: "读取工作表失败: " + err.Error(),
		}
	}
	if len(cells) == 0 {
		return nil, nil, errEmptyFile()
	}

	header := normalizeHeader(cells[0])
	rows := make([]importRawRow, 0, len(cells)-1)
	for i := 1; i < len(cells); i++ {
		rows = append(rows, rawRowFromCells(header, cells[i], i+1))
	}
	return header, rows, nil
}

// normalizeHeader 去除表头单元格首尾空白与 UTF-8 BOM
func normalizeHeader(raw []string) []string {
	header := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimPrefix(h, "\ufeff")
		header[i] = strings.TrimSpace(h)
	}
	return header
}

func rawRowFromCells(header, cells []string, num int) importRawRow {
	row := importRawRow{num: num, cells: make(map[string]string, len(header))}
	for i, name := range header {
		if name == "" {
			continue
		}
		if i < len(cells) {
			row.cells[name] = cells[i]
		} else {
			row.cells[name] = ""
		}
	}
	return row
}

// checkRequiredColumns 校验必需列，返回全部缺失列
func checkRequiredColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// isBlankRow 所有必需字段均为空白时整行视为空白，静默剔除
func (r importRawRow) isBlank() bool {
	for _, col := range requiredColumns {
		if strings.TrimSpace(r.cells[col]) != "" {
			return false
		}
	}
	return true
}

// normalizeRow 将原始文本行归一化为 importRecord
func normalizeRow(raw importRawRow) (importRecord, *ImportError) {
	rec := importRecord{num: raw.num}

	rec.earTagID = strings.TrimSpace(raw.cells["ear_tag_id"])
	rec.eid = strings.TrimSpace(raw.cells["eid"])
	rec.comments = strings.TrimSpace(raw.cells["comments"])

	var err *ImportError
	if rec.birthYear, err = parseOptionalInt(raw, "birth_year"); err != nil {
		return rec, err
	}
	if rec.breedingSeason, err = parseOptionalInt(raw, "breeding_season"); err != nil {
		return rec, err
	}
	if rec.checkDate, err = parseCheckDate(raw); err != nil {
		return rec, err
	}
	if rec.isPregnant, err = parsePregCode(raw); err != nil {
		return rec, err
	}
	if rec.recheck, err = parseRecheckFlag(raw); err != nil {
		return rec, err
	}
	return rec, nil
}

// parseOptionalInt 解析可空整数列，容忍 "2020.0" 这类电子表格浮点残留
func parseOptionalInt(raw importRawRow, field string) (*int, *ImportError) {
	s := strings.TrimSpace(raw.cells[field])
	if s == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		n := int(f)
		return &n, nil
	}
	return nil, errInvalidValue(raw.num, field, s)
}

// checkDateLayouts 常见日期写法，按顺序尝试
var checkDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"1/2/06",
}

// parseCheckDate 解析检查日期：常见日期格式或 Excel 序列号
func parseCheckDate(raw importRawRow) (*time.Time, *ImportError) {
	s := strings.TrimSpace(raw.cells["check_date"])
	if s == "" {
		return nil, nil
	}
	for _, layout := range checkDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	// Excel 序列号日期（RawCellValue 读取时的数值形态）
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	return nil, errInvalidValue(raw.num, "check_date", s)
}

// parsePregCode 解析孕检结果代码
// T/P → 已孕，F/O → 空怀（忽略大小写与首尾空白）；其余非空值一律视为非法
func parsePregCode(raw importRawRow) (*bool, *ImportError) {
	s := strings.TrimSpace(raw.cells["is_pregnant"])
	if s == "" {
		return nil, nil
	}
	switch strings.ToUpper(s) {
	case "T", "P":
		v := true
		return &v, nil
	case "F", "O":
		v := false
		return &v, nil
	}
	return nil, errInvalidValue(raw.num, "is_pregnant", s)
}

// parseRecheckFlag 解析复检标记，空值默认 false
func parseRecheckFlag(raw importRawRow) (bool, *ImportError) {
	s := strings.TrimSpace(raw.cells["recheck"])
	if s == "" {
		return false, nil
	}
	switch strings.ToLower(s) {
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n":
		return false, nil
	}
	return false, errInvalidValue(raw.num, "recheck", s)
}
