package models

import (
	"gorm.io/gorm"
)

// Admin 表示可以建立與控制遊戲的管理員帳號
type Admin struct {
	gorm.Model        // 內嵌 gorm.Model，提供 ID、CreatedAt、UpdatedAt 和 DeletedAt 字段
	Username   string `gorm:"uniqueIndex;not null" json:"username"` // 用戶名，必須唯一
	Password   string `gorm:"not null" json:"-"`                    // bcrypt 雜湊後的密碼，json 序列化時會被忽略
}
