package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/middleware"
	"wastetrack/internal/pkg/csrf"
	"wastetrack/internal/pkg/response"
)

const csrfCookieTTL = 12 * time.Hour

// CookieSettings carries the transport flags the handler stamps on every
// cookie it sets. RefreshPath scopes the refresh cookie to the refresh
// endpoint so it never rides along on ordinary API calls.
type CookieSettings struct {
	Secure      bool
	SameSite    http.SameSite
	RefreshPath string
}

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
	cookies CookieSettings
}

func NewHandler(service *Service, cookies CookieSettings) *Handler {
	return &Handler{service: service, cookies: cookies}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup, g *middleware.Guards) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", g.Public(middleware.ClassLogin, h.Login)...)
		authGroup.POST("/refresh", g.Public(middleware.ClassRefresh, h.Refresh)...)
		authGroup.GET("/csrf", g.Public(middleware.ClassRead, h.IssueCSRF)...)

		authGroup.POST("/logout", g.Authed(middleware.ClassWrite, h.Logout)...)
		authGroup.POST("/change-password", g.Authed(middleware.ClassWrite, h.ChangePassword)...)
	}

	userGroup := v1.Group("/users")
	{
		userGroup.GET("/me", g.Authed(middleware.ClassRead, h.GetMe)...)
		userGroup.PUT("/me", g.Authed(middleware.ClassWrite, h.UpdateProfile)...)
	}
}

// Login авторизует пользователя по email и паролю.
// @Summary		Войти в аккаунт
// @Description	Проверяет учётные данные и открывает серверную сессию. Токены доступа и обновления выдаются только в HttpOnly cookies.
// @Tags		Аутентификация
// @Param		request	body	LoginRequest	true	"Учётные данные (email, password)"
// @Success		200	{object}	map[string]interface{} "Успешный вход, cookies установлены"
// @Failure		401	{object}	map[string]interface{} "Неверный email или пароль"
// @Failure		403	{object}	map[string]interface{} "Аккаунт временно заблокирован"
// @Router		/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountLocked):
			// Coarse on purpose: no remaining time, no failure count.
			response.Error(c, http.StatusForbidden, "ACCOUNT_LOCKED", "Account is temporarily locked, try again later")
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
		default:
			response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		}
		return
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	response.Success(c, http.StatusOK, gin.H{"user": toUserPublic(result.User)})
}

// Refresh обновляет пару токенов по refresh cookie.
// @Summary		Обновить сессию
// @Description	Принимает refresh cookie, атомарно ротирует токен и переустанавливает обе cookies. Повторное использование старого токена уничтожает сессию.
// @Tags		Аутентификация
// @Success		200	{object}	map[string]interface{} "Новая пара токенов установлена в cookies"
// @Failure		401	{object}	map[string]interface{} "Токен недействителен, требуется повторный вход"
// @Router		/auth/refresh [POST]
func (h *Handler) Refresh(c *gin.Context) {
	raw, err := c.Cookie("refresh_token")
	if err != nil || raw == "" {
		h.rejectRefresh(c)
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), raw)
	if err != nil {
		// Reuse, expiry and plain invalidity are indistinguishable here.
		h.rejectRefresh(c)
		return
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	response.Success(c, http.StatusOK, gin.H{"refreshed": true})
}

// IssueCSRF выдаёт CSRF токен для двойной отправки.
// @Summary		Получить CSRF токен
// @Description	Устанавливает csrf_token cookie и возвращает то же значение в теле. Мутационные запросы обязаны повторить его в заголовке X-CSRF-Token.
// @Tags		Аутентификация
// @Success		200	{object}	map[string]interface{} "Токен выдан"
// @Router		/auth/csrf [GET]
func (h *Handler) IssueCSRF(c *gin.Context) {
	tok, err := csrf.NewToken()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "CSRF_ISSUE_FAILED", "Failed to issue token")
		return
	}

	c.SetSameSite(h.cookies.SameSite)
	c.SetCookie(middleware.CSRFCookieName, tok, int(csrfCookieTTL.Seconds()), "/", "", h.cookies.Secure, true)
	response.Success(c, http.StatusOK, gin.H{"csrf_token": tok})
}

// Logout завершает сессию и удаляет cookies.
// @Summary		Выйти из аккаунта
// @Description	Инвалидирует сессию на сервере и стирает обе token cookies.
// @Tags		Аутентификация
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{} "Сессия завершена"
// @Router		/auth/logout [POST]
func (h *Handler) Logout(c *gin.Context) {
	sessionID := c.GetString("session_id")
	if sessionID != "" {
		if err := h.service.Logout(c.Request.Context(), sessionID); err != nil {
			response.Error(c, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to log out")
			return
		}
	}

	h.clearAuthCookies(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.service.GetCurrentUser(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toUserPublic(user)})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Could not update profile")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toUserPublic(user)})
}

// ChangePassword меняет пароль и закрывает все сессии пользователя.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), c.GetInt64("user_id"), req); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Current password is incorrect")
			return
		}
		response.Error(c, http.StatusInternalServerError, "PASSWORD_CHANGE_FAILED", "Could not change password")
		return
	}

	// Every session is gone now, this one included.
	h.clearAuthCookies(c)
	response.Success(c, http.StatusOK, gin.H{"password_changed": true})
}

func (h *Handler) setAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	c.SetSameSite(h.cookies.SameSite)
	c.SetCookie("access_token", accessToken, int(h.service.tokens.AccessTTL().Seconds()), "/", "", h.cookies.Secure, true)
	c.SetCookie("refresh_token", refreshToken, int(h.service.tokens.RefreshTTL().Seconds()), h.cookies.RefreshPath, "", h.cookies.Secure, true)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(h.cookies.SameSite)
	c.SetCookie("access_token", "", -1, "/", "", h.cookies.Secure, true)
	c.SetCookie("refresh_token", "", -1, h.cookies.RefreshPath, "", h.cookies.Secure, true)
}

func (h *Handler) rejectRefresh(c *gin.Context) {
	h.clearAuthCookies(c)
	response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Please log in again")
}
