package inventory

import (
	"errors"
	"net/http"
	"strconv"

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
	items := v1.Group("/inventory")

	items.GET("", g.Protected(middleware.ClassRead, permission.ResourceInventory, permission.ActionRead, h.List)...)
	items.GET("/:id", g.Protected(middleware.ClassRead, permission.ResourceInventory, permission.ActionRead, h.Get)...)
	items.POST("", g.Protected(middleware.ClassWrite, permission.ResourceInventory, permission.ActionCreate, h.Create)...)
	items.PUT("/:id", g.Protected(middleware.ClassWrite, permission.ResourceInventory, permission.ActionUpdate, h.Update)...)
	items.DELETE("/:id", g.Protected(middleware.ClassDelete, permission.ResourceInventory, permission.ActionDelete, h.Delete)...)
}

// List возвращает позиции инвентаря в пределах видимости пользователя.
// @Summary		Список инвентаря
// @Description	Филиальные роли видят только свой филиал. Глобальные роли могут фильтровать через branch_id.
// @Tags		Inventory
// @Security	BearerAuth
// @Param		branch_id	query	int	false	"Фильтр по филиалу (только для глобальных ролей)"
// @Success		200	{object}	map[string]interface{} "Список позиций"
// @Router		/inventory [GET]
func (h *Handler) List(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in again")
		return
	}

	var branchID *int64
	if raw := c.Query("branch_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_BRANCH_ID", "Invalid branch_id filter")
			return
		}
		branchID = &id
	}

	items, err := h.service.List(c.Request.Context(), p, branchID)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			response.Forbidden(c)
			return
		}
		response.Unavailable(c)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *Handler) Get(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in again")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid item ID")
		return
	}

	item, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		h.writeItemError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"item": item})
}

// Create добавляет позицию инвентаря в филиал.
// @Summary		Создать позицию
// @Description	Филиальные роли могут создавать позиции только в своём филиале.
// @Tags		Inventory
// @Security	BearerAuth
// @Param		request	body	CreateItemRequest	true	"Данные позиции"
// @Success		201	{object}	map[string]interface{} "Созданная позиция"
// @Failure		403	{object}	map[string]interface{} "Чужой филиал"
// @Router		/inventory [POST]
func (h *Handler) Create(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in again")
		return
	}

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	item, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		h.writeItemError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"item": item})
}

func (h *Handler) Update(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in again")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid item ID")
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	item, err := h.service.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.writeItemError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"item": item})
}

func (h *Handler) Delete(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in again")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid item ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), p, id); err != nil {
		h.writeItemError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) writeItemError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		response.Forbidden(c)
	case errors.Is(err, ErrBranchNotFound):
		response.Error(c, http.StatusBadRequest, "BRANCH_NOT_FOUND", "Assigned branch does not exist")
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, "ITEM_NOT_FOUND", "Inventory item not found")
	default:
		response.Unavailable(c)
	}
}
