package service

import "sync"

// RoomRegistry 維護 roomID 到進行中房間的映射
// 只負責安全的建立、查詢與移除，房間內部的序列化由房間自己的鎖處理
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]*Room)}
}

// Get 查詢房間，不存在時回傳 nil
func (reg *RoomRegistry) Get(roomID string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[roomID]
}

// GetOrCreate 回傳既有的房間，不存在時以 create 建立
// 兩條連線同時搶建同一個房間時只會有一個實例留下
func (reg *RoomRegistry) GetOrCreate(roomID string, create func() *Room) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if room, ok := reg.rooms[roomID]; ok {
		return room
	}
	room := create()
	reg.rooms[roomID] = room
	return room
}

// Delete 把房間從註冊表移除，房間不存在時是 no-op
func (reg *RoomRegistry) Delete(roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, roomID)
}

// Len 回傳進行中的房間數
func (reg *RoomRegistry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
