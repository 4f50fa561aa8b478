package repository

import "trivia_web/internal/storage"

type Repositories struct {
	Admin      AdminRepository
	GameConfig GameConfigRepository
	Question   QuestionRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		Admin:      NewAdminRepository(db),
		GameConfig: NewGameConfigRepository(db),
		Question:   NewQuestionRepository(db),
	}
}
