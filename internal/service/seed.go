package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"trivia_web/internal/models"
	"trivia_web/internal/repository"
)

// sampleQuestions 是首次啟動時塞進題庫的範例題
// 重複九次湊滿一場 45 題
var sampleQuestions = []models.Question{
	{Question: "What is the capital of France?", OptionA: "London", OptionB: "Berlin", OptionC: "Paris", OptionD: "Madrid", CorrectAnswer: "c"},
	{Question: "Which planet is closest to the Sun?", OptionA: "Venus", OptionB: "Mercury", OptionC: "Earth", OptionD: "Mars", CorrectAnswer: "b"},
	{Question: "What is 2 + 2?", OptionA: "3", OptionB: "4", OptionC: "5", OptionD: "6", CorrectAnswer: "b"},
	{Question: "Who painted the Mona Lisa?", OptionA: "Van Gogh", OptionB: "Picasso", OptionC: "Da Vinci", OptionD: "Monet", CorrectAnswer: "c"},
	{Question: "What is the largest ocean?", OptionA: "Atlantic", OptionB: "Indian", OptionC: "Arctic", OptionD: "Pacific", CorrectAnswer: "d"},
}

// SeedDefaults 在首次啟動時建立預設管理員帳號與範例題庫
// 重複執行不會新增第二份資料
func SeedDefaults(repos *repository.Repositories) error {
	if _, err := repos.Admin.FindByUsername("admin"); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if err := repos.Admin.Create(&models.Admin{Username: "admin", Password: string(hashed)}); err != nil {
			return err
		}
	}

	count, err := repos.Question.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := 0; i < QuestionPoolSize/len(sampleQuestions); i++ {
		for _, sample := range sampleQuestions {
			question := sample
			if err := repos.Question.Create(&question); err != nil {
				return err
			}
		}
	}
	return nil
}
