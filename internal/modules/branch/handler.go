package branch

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
	branches := v1.Group("/branches")

	branches.GET("", g.Protected(middleware.ClassRead, permission.ResourceBranch, permission.ActionRead, h.List)...)
	branches.GET("/:id", g.Protected(middleware.ClassRead, permission.ResourceBranch, permission.ActionRead, h.Get)...)
	branches.POST("", g.Protected(middleware.ClassWrite, permission.ResourceBranch, permission.ActionCreate, h.Create)...)
	branches.PUT("/:id", g.Protected(middleware.ClassWrite, permission.ResourceBranch, permission.ActionUpdate, h.Update)...)
}

// List возвращает филиалы, доступные текущему пользователю.
// @Summary		Список филиалов
// @Description	Глобальные роли видят все филиалы, филиальные роли только свой.
// @Tags		Branches
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{} "Список филиалов"
// @Router		/branches [GET]
func (h *Handler) List(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in again")
		return
	}

	branches, err := h.service.List(c.Request.Context(), p)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			response.Forbidden(c)
			return
		}
		response.Unavailable(c)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"branches": branches,
		"count":    len(branches),
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
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid branch ID")
		return
	}

	b, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Forbidden(c)
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Error(c, http.StatusNotFound, "BRANCH_NOT_FOUND", "Branch not found")
		default:
			response.Unavailable(c)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"branch": b})
}

// Create создаёт новый филиал.
// @Summary		Создать филиал
// @Tags		Branches
// @Security	BearerAuth
// @Param		request	body	CreateBranchRequest	true	"Данные филиала"
// @Success		201	{object}	map[string]interface{} "Созданный филиал"
// @Failure		409	{object}	map[string]interface{} "Название уже занято"
// @Router		/branches [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	b, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrNameExists) {
			response.Error(c, http.StatusConflict, "NAME_EXISTS", "Branch name is already taken")
			return
		}
		response.Unavailable(c)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"branch": b})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid branch ID")
		return
	}

	var req UpdateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	b, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNameExists):
			response.Error(c, http.StatusConflict, "NAME_EXISTS", "Branch name is already taken")
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Error(c, http.StatusNotFound, "BRANCH_NOT_FOUND", "Branch not found")
		default:
			response.Unavailable(c)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"branch": b})
}
