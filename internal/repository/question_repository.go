package repository

import (
	"trivia_web/internal/models"
	"trivia_web/internal/storage"
)

type QuestionRepository interface {
	Create(question *models.Question) error
	Count() (int64, error)
	// FetchRandom 從題庫隨機取出最多 limit 道題目（不重複）
	FetchRandom(limit int) ([]models.Question, error)
}

type questionRepository struct {
	db *storage.PostgresDB
}

func NewQuestionRepository(db *storage.PostgresDB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *models.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Question{}).Count(&count).Error
	return count, err
}

func (r *questionRepository) FetchRandom(limit int) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.Order("RANDOM()").Limit(limit).Find(&questions).Error
	return questions, err
}
