package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/battleship/internal/models"
	"github.com/wfunc/battleship/internal/repository"
)

// RecordHandler 对局归档处理器
type RecordHandler struct {
	repo repository.MatchRecordRepository
}

// NewRecordHandler 创建归档处理器
func NewRecordHandler(repo repository.MatchRecordRepository) *RecordHandler {
	return &RecordHandler{repo: repo}
}

// RecordListResponse 归档列表响应
type RecordListResponse struct {
	Records  []*models.MatchRecord `json:"records"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

// ListRecords 分页列出已归档的对局
func (h *RecordHandler) ListRecords(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	p := repository.NewPagination(page, pageSize)

	records, err := h.repo.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []*models.MatchRecord{}
	}
	c.JSON(http.StatusOK, RecordListResponse{
		Records:  records,
		Total:    p.Total,
		Page:     p.Page,
		PageSize: p.PageSize,
	})
}

// GetRecord 按对局ID获取归档
func (h *RecordHandler) GetRecord(c *gin.Context) {
	record, err := h.repo.FindByGameID(c.Request.Context(), c.Param("game_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
