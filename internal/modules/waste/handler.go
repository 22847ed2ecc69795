package waste

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"wastetrack/internal/middleware"
	"wastetrack/internal/permission"
	"wastetrack/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup, g *middleware.Guards) {
	logs := v1.Group("/waste")

	logs.POST("", g.Protected(middleware.ClassWrite, permission.ResourceWaste, permission.ActionCreate, h.Create)...)
	logs.GET("", g.Protected(middleware.ClassRead, permission.ResourceWaste, permission.ActionRead, h.List)...)
	logs.GET("/summary", g.Protected(middleware.ClassAnalytics, permission.ResourceWaste, permission.ActionRead, h.Summary)...)
	logs.GET("/export", g.Protected(middleware.ClassExport, permission.ResourceWaste, permission.ActionExport, h.Export)...)
	logs.PUT("/:id", g.Protected(middleware.ClassWrite, permission.ResourceWaste, permission.ActionUpdate, h.Update)...)
	logs.DELETE("/:id", g.Protected(middleware.ClassDelete, permission.ResourceWaste, permission.ActionDelete, h.Delete)...)
}

// Create записывает факт списания по позиции инвентаря.
// @Summary		Записать списание
// @Description	Списание наследует филиал позиции. Филиальные роли пишут только в свой филиал.
// @Tags		Waste
// @Security	BearerAuth
// @Param		request	body	CreateWasteLogRequest	true	"Данные списания"
// @Success		201	{object}	map[string]interface{} "Созданная запись"
// @Failure		403	{object}	map[string]interface{} "Чужой филиал"
// @Router		/waste [POST]
func (h *Handler) Create(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in again")
		return
	}

	var req CreateWasteLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	wl, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		h.writeWasteError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"waste_log": wl})
}

// List возвращает записи списаний с фильтрами по филиалу и периоду.
// @Summary		Список списаний
// @Tags		Waste
// @Security	BearerAuth
// @Param		branch_id	query	int		false	"Фильтр по филиалу (только для глобальных ролей)"
// @Param		from		query	string	false	"Дата начала периода (2006-01-02)"
// @Param		to			query	string	false	"Дата конца периода, включительно (2006-01-02)"
// @Success		200	{object}	map[string]interface{} "Список записей"
// @Router		/waste [GET]
func (h *Handler) List(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in again")
		return
	}

	logs, err := h.service.List(c.Request.Context(), p, parseListQuery(c))
	if err != nil {
		h.writeWasteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"waste_logs": logs,
		"count":      len(logs),
	})
}

// Summary отдаёт агрегированную сводку списаний по позициям.
// @Summary		Сводка списаний
// @Tags		Waste
// @Security	BearerAuth
// @Param		branch_id	query	int		false	"Фильтр по филиалу (только для глобальных ролей)"
// @Param		from		query	string	false	"Дата начала периода (2006-01-02)"
// @Param		to			query	string	false	"Дата конца периода (2006-01-02)"
// @Success		200	{object}	map[string]interface{} "Сводка"
// @Router		/waste/summary [GET]
func (h *Handler) Summary(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in again")
		return
	}

	rows, err := h.service.Summary(c.Request.Context(), p, parseListQuery(c))
	if err != nil {
		h.writeWasteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"summary": rows,
		"count":   len(rows),
	})
}

// Export выгружает записи списаний в CSV.
// @Summary		Экспорт списаний в CSV
// @Tags		Waste
// @Security	BearerAuth
// @Produce		text/csv
// @Param		branch_id	query	int		false	"Фильтр по филиалу (только для глобальных ролей)"
// @Param		from		query	string	false	"Дата начала периода (2006-01-02)"
// @Param		to			query	string	false	"Дата конца периода (2006-01-02)"
// @Success		200	{string}	string	"CSV файл"
// @Router		/waste/export [GET]
func (h *Handler) Export(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in again")
		return
	}

	filename := fmt.Sprintf("waste-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := h.service.ExportCSV(c.Request.Context(), p, parseListQuery(c), c.Writer); err != nil {
		// headers are out already, the truncated body is all we can signal
		_ = c.Error(err)
	}
}

func (h *Handler) Update(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in again")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid waste log ID")
		return
	}

	var req UpdateWasteLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	wl, err := h.service.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.writeWasteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"waste_log": wl})
}

func (h *Handler) Delete(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in again")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid waste log ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), p, id); err != nil {
		h.writeWasteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) writeWasteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		response.Forbidden(c)
	case errors.Is(err, ErrItemNotFound):
		response.Error(c, http.StatusBadRequest, "ITEM_NOT_FOUND", "Inventory item not found")
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, "WASTE_LOG_NOT_FOUND", "Waste log not found")
	default:
		response.Unavailable(c)
	}
}

func parseListQuery(c *gin.Context) ListQuery {
	var q ListQuery
	if raw := c.Query("branch_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			q.BranchID = &id
		}
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			q.From = t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			q.To = t.Add(24 * time.Hour)
		}
	}
	return q
}
