package service

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	ID       string          // 連線識別碼，玩家在房間內以此為鍵
	Conn     *websocket.Conn // WebSocket 連接
	RoomID   string          // 加入的房間 ID，尚未加入時為空字串
	Role     string          // 連線角色 (player/admin)
	SendChan chan *Event     // 事件發送通道，用於異步傳送訊息
}

// NewClient 為一條新連線建立客戶端，並配置連線識別碼
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Conn:     conn,
		SendChan: make(chan *Event, 256), // 設置緩衝大小為 256 的事件通道
	}
}

// Send 把事件放進客戶端的發送隊列，隊列滿時直接丟棄
func (c *Client) Send(event *Event) {
	select {
	case c.SendChan <- event:
	default:
		log.Printf("client %s send queue full, event %s dropped", c.ID, event.Type)
	}
}

// Dispatcher 負責處理客戶端送來的訊息與斷線通知
// 由遊戲狀態機實作，WebSocketManager 只管連線進出
type Dispatcher interface {
	HandleMessage(client *Client, raw []byte)
	HandleDisconnect(client *Client)
}

// Messenger 是狀態機對外發送訊息時依賴的介面
type Messenger interface {
	JoinRoom(client *Client, roomID string)
	LeaveRoom(client *Client)
	BroadcastToRoom(roomID string, event *Event)
	CloseRoom(roomID string)
}

// WebSocketManager 管理所有的 WebSocket 連接和訊息廣播
type WebSocketManager struct {
	clients    map[string]map[*Client]bool // 兩層 map: roomID -> client -> bool
	clientsMux sync.RWMutex                // 用於保護 clients map 的讀寫鎖
}

// NewWebSocketManager 創建並初始化新的 WebSocket 管理器
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients: make(map[string]map[*Client]bool),
	}
}

// HandleConnection 處理新的 WebSocket 連線，直到連線關閉才返回
// 收到的訊息交給 dispatcher 處理，斷線時通知 dispatcher 清理狀態
func (m *WebSocketManager) HandleConnection(conn *websocket.Conn, dispatcher Dispatcher) {
	client := NewClient(conn)

	// 確保連線關閉時清理資源
	// 先讓狀態機處理斷線（它需要 client.RoomID 找到房間），再退出廣播群組
	defer func() {
		dispatcher.HandleDisconnect(client)
		m.LeaveRoom(client)
		conn.Close()
	}()

	go m.writePump(client)
	m.readPump(client, dispatcher)
}

// readPump 持續監聽並處理從客戶端接收的訊息
func (m *WebSocketManager) readPump(client *Client, dispatcher Dispatcher) {
	client.Conn.SetReadLimit(4096) // 設置最大訊息大小為 4KB
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			break
		}

		dispatcher.HandleMessage(client, raw)
	}
}

// writePump 處理向客戶端發送事件的邏輯
func (m *WebSocketManager) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			// 設置寫入超時
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// JSON 編碼
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("event encoding error: %v", err)
				continue
			}

			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// JoinRoom 把客戶端加入房間的廣播群組
func (m *WebSocketManager) JoinRoom(client *Client, roomID string) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	// 一條連線同時只屬於一個房間
	if client.RoomID != "" && client.RoomID != roomID {
		m.removeLocked(client)
	}

	if m.clients[roomID] == nil {
		m.clients[roomID] = make(map[*Client]bool)
	}
	m.clients[roomID][client] = true
	client.RoomID = roomID
}

// LeaveRoom 把客戶端從所屬房間的廣播群組移除
func (m *WebSocketManager) LeaveRoom(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()
	m.removeLocked(client)
}

func (m *WebSocketManager) removeLocked(client *Client) {
	if clients, ok := m.clients[client.RoomID]; ok {
		delete(clients, client)
		// 如果房間空了，刪除房間
		if len(clients) == 0 {
			delete(m.clients, client.RoomID)
		}
	}
	client.RoomID = ""
}

// BroadcastToRoom 向房間內的所有客戶端廣播事件
func (m *WebSocketManager) BroadcastToRoom(roomID string, event *Event) {
	m.clientsMux.RLock()
	targets := make([]*Client, 0, len(m.clients[roomID]))
	for client := range m.clients[roomID] {
		targets = append(targets, client)
	}
	m.clientsMux.RUnlock()

	for _, client := range targets {
		client.Send(event)
	}
}

// CloseRoom 通知房間內所有客戶端關閉頁面並截斷連線
func (m *WebSocketManager) CloseRoom(roomID string) {
	m.clientsMux.Lock()
	clients := m.clients[roomID]
	delete(m.clients, roomID)
	m.clientsMux.Unlock()

	// client.RoomID 留給連線自己的斷線清理（LeaveRoom）歸零，
	// 在這裡寫會跟連線 goroutine 的讀取相撞
	for client := range clients {
		client.Send(&Event{Type: EventCloseTab})
		if client.Conn != nil {
			// 給 writePump 一點時間把 close_tab 送出去再截斷連線
			go func(conn *websocket.Conn) {
				time.Sleep(100 * time.Millisecond)
				conn.Close()
			}(client.Conn)
		}
	}
}

// RoomClients 獲取指定房間的在線客戶端數量
func (m *WebSocketManager) RoomClients(roomID string) int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.clients[roomID])
}
