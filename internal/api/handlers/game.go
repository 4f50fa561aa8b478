package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trivia_web/internal/service"
)

// GameHandler 處理遊戲設定的管理請求
type GameHandler struct {
	gameService *service.GameService
}

// NewGameHandler 創建一個新的 GameHandler 實例
func NewGameHandler(gameService *service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

// CreateGame 處理建立新遊戲的請求
func (h *GameHandler) CreateGame(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gameID, err := h.gameService.CreateGame(input.Name, input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "建立遊戲失敗"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"game_id": gameID})
}

// ListGames 處理遊戲列表的請求，附上進行中房間的即時資訊
func (h *GameHandler) ListGames(c *gin.Context) {
	games, err := h.gameService.ListGames()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法查詢遊戲列表"})
		return
	}

	c.JSON(http.StatusOK, games)
}

// DeleteGame 處理刪除遊戲的請求，會一併解散進行中的房間
func (h *GameHandler) DeleteGame(c *gin.Context) {
	if err := h.gameService.DeleteGame(c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "遊戲已刪除"})
}
