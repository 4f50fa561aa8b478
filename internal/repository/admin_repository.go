package repository

import (
	"trivia_web/internal/models"
	"trivia_web/internal/storage"
)

type AdminRepository interface {
	Create(admin *models.Admin) error
	FindByUsername(username string) (*models.Admin, error)
}

type adminRepository struct {
	db *storage.PostgresDB
}

func NewAdminRepository(db *storage.PostgresDB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

func (r *adminRepository) FindByUsername(username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.Where("username = ?", username).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}
