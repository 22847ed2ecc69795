package admin

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
	users := v1.Group("/admin/users")

	users.GET("", g.Protected(middleware.ClassRead, permission.ResourceUser, permission.ActionRead, h.ListUsers)...)
	users.GET("/:id", g.Protected(middleware.ClassRead, permission.ResourceUser, permission.ActionRead, h.GetUser)...)
	users.POST("", g.Protected(middleware.ClassWrite, permission.ResourceUser, permission.ActionCreate, h.CreateUser)...)
	users.PUT("/:id", g.Protected(middleware.ClassWrite, permission.ResourceUser, permission.ActionUpdate, h.UpdateUser)...)
	users.DELETE("/:id", g.Protected(middleware.ClassDelete, permission.ResourceUser, permission.ActionDelete, h.DeleteUser)...)
	users.POST("/:id/force-password-reset", g.Protected(middleware.ClassWrite, permission.ResourceUser, permission.ActionManage, h.ForcePasswordReset)...)
}

// CreateUser создаёт нового пользователя с ролью и привязкой к филиалу.
// @Summary		Создать пользователя
// @Description	Создаёт пользователя с указанной ролью. Для филиальных ролей требуется существующий филиал, для глобальных ролей филиал запрещён.
// @Tags		Admin - Пользователи
// @Security	BearerAuth
// @Param		request	body	CreateUserRequest	true	"Данные пользователя"
// @Success		201	{object}	map[string]interface{} "Созданный пользователь"
// @Failure		400	{object}	map[string]interface{} "Ошибка валидации или недопустимая комбинация роли и филиала"
// @Failure		409	{object}	map[string]interface{} "Email уже занят"
// @Router		/admin/users [POST]
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.writeUserError(c, err, "CREATE_FAILED")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": toUserDTO(user)})
}

// ListUsers возвращает список всех пользователей.
// @Summary		Список пользователей
// @Tags		Admin - Пользователи
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{} "Список пользователей"
// @Router		/admin/users [GET]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		response.Unavailable(c)
		return
	}

	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, toUserDTO(&users[i]))
	}

	response.Success(c, http.StatusOK, gin.H{
		"users": out,
		"count": len(out),
	})
}

func (h *Handler) GetUser(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		response.Unavailable(c)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toUserDTO(user)})
}

// UpdateUser меняет имя, роль или филиал пользователя.
// @Summary		Обновить пользователя
// @Description	Обновляет данные пользователя. При смене роли комбинация роли и филиала проверяется заново, поэтому branch_id нужно передавать вместе с ролью.
// @Tags		Admin - Пользователи
// @Security	BearerAuth
// @Param		id		path	int					true	"ID пользователя"
// @Param		request	body	UpdateUserRequest	true	"Изменяемые поля"
// @Success		200	{object}	map[string]interface{} "Обновлённый пользователь"
// @Failure		400	{object}	map[string]interface{} "Недопустимая комбинация роли и филиала"
// @Failure		404	{object}	map[string]interface{} "Пользователь не найден"
// @Router		/admin/users/{id} [PUT]
func (h *Handler) UpdateUser(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), userID, req)
	if err != nil {
		h.writeUserError(c, err, "UPDATE_FAILED")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toUserDTO(user)})
}

// DeleteUser удаляет пользователя и завершает все его сессии.
// @Summary		Удалить пользователя
// @Tags		Admin - Пользователи
// @Security	BearerAuth
// @Param		id	path	int	true	"ID пользователя"
// @Success		200	{object}	map[string]interface{} "Пользователь удалён"
// @Failure		404	{object}	map[string]interface{} "Пользователь не найден"
// @Router		/admin/users/{id} [DELETE]
func (h *Handler) DeleteUser(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		response.Unavailable(c)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ForcePasswordReset сбрасывает пароль пользователя и завершает его сессии.
// @Summary		Принудительный сброс пароля
// @Description	Генерирует временный пароль, завершает все сессии пользователя и возвращает пароль в ответе один раз.
// @Tags		Admin - Пользователи
// @Security	BearerAuth
// @Param		id	path	int	true	"ID пользователя"
// @Success		200	{object}	map[string]interface{} "Временный пароль"
// @Failure		404	{object}	map[string]interface{} "Пользователь не найден"
// @Router		/admin/users/{id}/force-password-reset [POST]
func (h *Handler) ForcePasswordReset(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	temp, err := h.service.ForcePasswordReset(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		response.Unavailable(c)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"temporary_password": temp})
}

func (h *Handler) writeUserError(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, ErrInvalidRole):
		response.Error(c, http.StatusBadRequest, "INVALID_ROLE", "Unknown role")
	case errors.Is(err, ErrBranchRequired):
		response.Error(c, http.StatusBadRequest, "BRANCH_REQUIRED", "Branch roles need a branch assignment")
	case errors.Is(err, ErrBranchNotAllowed):
		response.Error(c, http.StatusBadRequest, "BRANCH_NOT_ALLOWED", "Global roles cannot carry a branch assignment")
	case errors.Is(err, ErrBranchNotFound):
		response.Error(c, http.StatusBadRequest, "BRANCH_NOT_FOUND", "Assigned branch does not exist")
	case errors.Is(err, ErrEmailExists):
		response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "Email is already registered")
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		response.Error(c, http.StatusInternalServerError, fallbackCode, "Request could not be processed")
	}
}

func parseIDParam(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
