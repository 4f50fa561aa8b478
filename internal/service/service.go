package service

import (
	"trivia_web/internal/repository"
	"trivia_web/pkg/config"
)

type Services struct {
	Auth      *AuthService
	Game      *GameService
	WebSocket *WebSocketManager
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	wsManager := NewWebSocketManager()

	authService := NewAuthService(repos.Admin)
	gameService := NewGameService(repos.GameConfig, repos.Question, wsManager, TimingsFromConfig(cfg.Game))
	return &Services{
		Auth:      authService,
		Game:      gameService,
		WebSocket: wsManager,
	}
}
