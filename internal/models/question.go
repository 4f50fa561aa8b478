package models

import (
	"gorm.io/gorm"
)

// Question 表示題庫中的一道選擇題
// 四個選項固定存在 a~d 欄位，CorrectAnswer 記錄正確選項的字母
type Question struct {
	gorm.Model
	Question      string `json:"question"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer" gorm:"type:varchar(1)"` // "a" ~ "d"
}

// Options 依序回傳四個選項文字
func (q *Question) Options() [4]string {
	return [4]string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
}

// Valid 檢查題目是否完整：四個選項都有內容且正確答案是 a~d 其中之一
func (q *Question) Valid() bool {
	for _, opt := range q.Options() {
		if opt == "" {
			return false
		}
	}
	switch q.CorrectAnswer {
	case "a", "b", "c", "d":
		return true
	}
	return false
}
