package models

import (
	"gorm.io/gorm"
)

// GameConfig 表示一場遊戲的持久化設定
// 只保存建立房間所需的資料，進行中的狀態完全存在記憶體中
type GameConfig struct {
	gorm.Model
	Name     string `json:"name"`     // 房間顯示名稱
	Password string `json:"password"` // 玩家加入時需要的通關密語
}
