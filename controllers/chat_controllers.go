package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/services"
	"github.com/yeremiapane/scan-order/utils"
)

type ChatController struct {
	Chat *services.ChatService
}

func NewChatController(chat *services.ChatService) *ChatController {
	return &ChatController{Chat: chat}
}

// PostChat answers a guest question about a branch.
func (cc *ChatController) PostChat(c *gin.Context) {
	var req services.ChatInput
	if !bind(c, &req) {
		return
	}
	reply, err := cc.Chat.Chat(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Chat response", reply)
}

func (cc *ChatController) ClearHistory(c *gin.Context) {
	if cc.Chat.ClearHistory(c.Param("branch_id")) {
		utils.RespondJSON(c, http.StatusOK, "Conversation history cleared", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "No conversation history for this branch", nil)
}

func (cc *ChatController) GetBranchInfo(c *gin.Context) {
	info, err := cc.Chat.BranchInfo(c.Request.Context(), c.Param("branch_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Branch info", info)
}

func (cc *ChatController) GetAIConfig(c *gin.Context) {
	cfg, err := cc.Chat.GetAIConfig(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "AI config", cfg)
}

func (cc *ChatController) UpdateAIConfig(c *gin.Context) {
	var req services.AIConfigUpdate
	if !bind(c, &req) {
		return
	}
	cfg, err := cc.Chat.UpdateAIConfig(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "AI config updated", cfg)
}

func (cc *ChatController) Health(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Chat service is running", cc.Chat.Health())
}
