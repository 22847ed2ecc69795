package security

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"wastetrack/internal/domain"
	"wastetrack/internal/middleware"
	"wastetrack/internal/permission"
	"wastetrack/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin filtering happens in the CORS middleware, the handshake
	// itself is already behind cookie auth.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AttemptLister reads the persisted login attempt trail.
type AttemptLister interface {
	ListRecent(ctx context.Context, limit, offset int) ([]domain.LoginAttempt, error)
}

type Handler struct {
	hub      *Hub
	attempts AttemptLister
}

func NewHandler(hub *Hub, attempts AttemptLister) *Handler {
	return &Handler{hub: hub, attempts: attempts}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup, g *middleware.Guards) {
	sec := v1.Group("/security")

	sec.GET("/events", g.Protected(middleware.ClassRead, permission.ResourceSecurity, permission.ActionRead, h.StreamEvents)...)
	sec.GET("/login-attempts", g.Protected(middleware.ClassRead, permission.ResourceSecurity, permission.ActionRead, h.ListLoginAttempts)...)
}

// StreamEvents поднимает WebSocket и транслирует события безопасности.
// @Summary		Лента событий безопасности
// @Description	Блокировки аккаунтов, повторное использование refresh-токенов и срабатывания rate limit в реальном времени. Аутентификация через cookie на рукопожатии.
// @Tags		Security
// @Security	BearerAuth
// @Success		101	{string}	string	"WebSocket"
// @Router		/security/events [GET]
func (h *Handler) StreamEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written its own error response
		log.Printf("security_feed event=upgrade_failed error=%v", err)
		return
	}

	cl := h.hub.register(conn)
	go cl.writePump()
	cl.readPump(h.hub)
}

// ListLoginAttempts возвращает журнал попыток входа.
// @Summary		Журнал попыток входа
// @Tags		Security
// @Security	BearerAuth
// @Param		limit	query	int	false	"Количество записей (по умолчанию 100, максимум 500)"
// @Param		offset	query	int	false	"Смещение от начала"
// @Success		200	{object}	map[string]interface{} "Список попыток"
// @Router		/security/login-attempts [GET]
func (h *Handler) ListLoginAttempts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	attempts, err := h.attempts.ListRecent(c.Request.Context(), limit, offset)
	if err != nil {
		response.Unavailable(c)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"attempts": attempts,
		"count":    len(attempts),
	})
}
