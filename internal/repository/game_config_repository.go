package repository

import (
	"trivia_web/internal/models"
	"trivia_web/internal/storage"
)

type GameConfigRepository interface {
	Create(config *models.GameConfig) error
	FindByID(id uint) (*models.GameConfig, error)
	Delete(id uint) error
	FindAll() ([]models.GameConfig, error) // 簡單的列表查詢
}

type gameConfigRepository struct {
	db *storage.PostgresDB
}

func NewGameConfigRepository(db *storage.PostgresDB) GameConfigRepository {
	return &gameConfigRepository{db: db}
}

func (r *gameConfigRepository) Create(config *models.GameConfig) error {
	return r.db.Create(config).Error
}

func (r *gameConfigRepository) FindByID(id uint) (*models.GameConfig, error) {
	var config models.GameConfig
	err := r.db.First(&config, id).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *gameConfigRepository) Delete(id uint) error {
	return r.db.Delete(&models.GameConfig{}, id).Error
}

// FindAll 查詢所有遊戲設定，依建立時間由新到舊排序
func (r *gameConfigRepository) FindAll() ([]models.GameConfig, error) {
	var configs []models.GameConfig
	err := r.db.Order("created_at DESC").Find(&configs).Error
	return configs, err
}
