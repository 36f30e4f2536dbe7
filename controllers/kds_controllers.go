package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/scan-order/kds"
	"github.com/yeremiapane/scan-order/middlewares"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
)

// KDSController upgrades kitchen and floor displays to websocket connections on the hub.
type KDSController struct {
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

// NewKDSController accepts upgrades from the given origins; "*" accepts any.
func NewKDSController(hub *kds.Hub, origins []string) *KDSController {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &KDSController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Handle is the websocket endpoint. The connection only receives the caller's tenant events.
func (kc *KDSController) Handle(c *gin.Context) {
	role := middlewares.Role(c)
	if role != models.RoleOwner && role != models.RoleStaff && role != models.RoleChef {
		utils.RespondAppError(c, utils.NewForbidden("owner, staff or chef access required"))
		return
	}

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Warn("KDS websocket upgrade failed")
		return
	}
	if !kc.Hub.Register(ws, role, tenantOf(c)) {
		ws.Close()
		return
	}
	defer kc.Hub.Unregister(ws)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
