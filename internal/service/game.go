package service

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"trivia_web/internal/models"
	"trivia_web/internal/repository"
	"trivia_web/pkg/config"
	"trivia_web/pkg/utils"
)

// Timings 是遊戲各階段的時間參數，測試時可以注入較短的值
type Timings struct {
	Question     time.Duration // 每題的作答時間
	Voting       time.Duration // 投票階段的時間
	NextQuestion time.Duration // 題與題之間的延遲
	RoundStart   time.Duration // 回合開場畫面到第一題的延遲
}

func TimingsFromConfig(cfg config.GameConfig) Timings {
	return Timings{
		Question:     time.Duration(cfg.QuestionSeconds) * time.Second,
		Voting:       time.Duration(cfg.VotingSeconds) * time.Second,
		NextQuestion: time.Duration(cfg.NextQuestionDelay) * time.Second,
		RoundStart:   time.Duration(cfg.RoundStartDelay) * time.Second,
	}
}

// GameService 是遊戲房間的狀態機
// 客戶端訊息、管理員指令與計時器回呼都經由它進入房間，
// 並以房間各自的鎖序列化
type GameService struct {
	registry     *RoomRegistry
	messenger    Messenger
	configRepo   repository.GameConfigRepository
	questionRepo repository.QuestionRepository
	timings      Timings
}

func NewGameService(configRepo repository.GameConfigRepository, questionRepo repository.QuestionRepository,
	messenger Messenger, timings Timings) *GameService {
	return &GameService{
		registry:     NewRoomRegistry(),
		messenger:    messenger,
		configRepo:   configRepo,
		questionRepo: questionRepo,
		timings:      timings,
	}
}

// HandleMessage 是訊息進入狀態機前的邊界：解析外層結構、
// 依類型解析載荷並做基本驗證，格式不對的訊息到不了房間
func (s *GameService) HandleMessage(client *Client, raw []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		client.Send(NewErrorEvent("無法解析的訊息"))
		return
	}

	switch msg.Type {
	case MessageJoinGame:
		var p JoinGamePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.GameID == "" || strings.TrimSpace(p.PlayerName) == "" {
			client.Send(NewErrorEvent("訊息格式錯誤"))
			return
		}
		p.PlayerName = strings.TrimSpace(p.PlayerName)
		s.JoinGame(client, p)
	case MessageAdminJoin:
		var p AdminJoinPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.GameID == "" {
			client.Send(NewErrorEvent("訊息格式錯誤"))
			return
		}
		s.AdminJoin(client, p)
	case MessageGetPlayers:
		var p GameIDPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.GameID == "" {
			client.Send(NewErrorEvent("訊息格式錯誤"))
			return
		}
		s.GetPlayers(client, p)
	case MessageStartGame:
		var p GameIDPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.GameID == "" {
			client.Send(NewErrorEvent("訊息格式錯誤"))
			return
		}
		s.StartGame(client, p)
	case MessageStopGame:
		var p GameIDPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.GameID == "" {
			client.Send(NewErrorEvent("訊息格式錯誤"))
			return
		}
		s.StopGame(client, p)
	case MessageSubmitAnswer:
		var p SubmitAnswerPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.GameID == "" {
			client.Send(NewErrorEvent("訊息格式錯誤"))
			return
		}
		p.Answer = strings.ToLower(p.Answer)
		if p.Answer != "a" && p.Answer != "b" && p.Answer != "c" && p.Answer != "d" {
			client.Send(NewErrorEvent("無效的選項"))
			return
		}
		s.SubmitAnswer(client, p)
	case MessageVotePlayer:
		var p VotePlayerPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.GameID == "" || p.TargetID == "" {
			client.Send(NewErrorEvent("訊息格式錯誤"))
			return
		}
		s.CastVote(client, p)
	case MessageNextQuestion:
		var p GameIDPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.GameID == "" {
			client.Send(NewErrorEvent("訊息格式錯誤"))
			return
		}
		s.AdvancePhase(client, p)
	default:
		client.Send(NewErrorEvent("未知的訊息類型"))
	}
}

// CreateGame 寫入一筆遊戲設定並回傳房間 ID
// 房間本身等到第一個連線加入時才會建立
func (s *GameService) CreateGame(name, password string) (string, error) {
	row := &models.GameConfig{Name: name, Password: password}
	if err := s.configRepo.Create(row); err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(row.ID), 10), nil
}

// GameSummary 是房間列表的一列
type GameSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Live      bool      `json:"live"`
	Players   int       `json:"players"`
	Status    string    `json:"status"`
}

// ListGames 列出所有遊戲設定，並附上進行中房間的即時資訊
func (s *GameService) ListGames() ([]GameSummary, error) {
	configs, err := s.configRepo.FindAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]GameSummary, 0, len(configs))
	for _, cfg := range configs {
		summary := GameSummary{
			ID:        strconv.FormatUint(uint64(cfg.ID), 10),
			Name:      cfg.Name,
			CreatedAt: cfg.CreatedAt,
		}
		if room := s.registry.Get(summary.ID); room != nil {
			room.mu.Lock()
			summary.Live = true
			summary.Players = len(room.Players)
			summary.Status = string(room.Status)
			room.mu.Unlock()
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// DeleteGame 刪除遊戲設定；房間還活著的話先通知成員、踢出所有連線
func (s *GameService) DeleteGame(roomID string) error {
	id, err := strconv.ParseUint(roomID, 10, 32)
	if err != nil {
		return errors.New("無效的房間 ID")
	}

	if room := s.registry.Get(roomID); room != nil {
		room.mu.Lock()
		room.cancelTimer()
		room.Status = RoomStatusFinished
		room.Phase = PhaseIdle
		room.Players = make(map[string]*Player)
		room.AdminClient = nil
		room.mu.Unlock()

		s.messenger.BroadcastToRoom(roomID, &Event{Type: EventGameCancelled})
		s.messenger.CloseRoom(roomID)
		s.registry.Delete(roomID)
	}

	return s.configRepo.Delete(uint(id))
}

// getOrLoadRoom 取得進行中的房間；還沒載入的話從遊戲設定建立
func (s *GameService) getOrLoadRoom(roomID string) (*Room, error) {
	if room := s.registry.Get(roomID); room != nil {
		return room, nil
	}

	id, err := strconv.ParseUint(roomID, 10, 32)
	if err != nil {
		return nil, errors.New("找不到遊戲")
	}
	cfg, err := s.configRepo.FindByID(uint(id))
	if err != nil {
		return nil, errors.New("找不到遊戲")
	}

	return s.registry.GetOrCreate(roomID, func() *Room {
		return NewRoom(roomID, cfg.Name, cfg.Password)
	}), nil
}

// JoinGame 處理玩家加入：驗證密碼與人數上限
// 同一條連線重複加入視為更新名稱，不會新增第二個玩家
func (s *GameService) JoinGame(client *Client, p JoinGamePayload) {
	room, err := s.getOrLoadRoom(p.GameID)
	if err != nil {
		client.Send(NewErrorEvent(err.Error()))
		return
	}

	// 換房間等同離開舊房間，先清掉舊的玩家資料
	if client.RoomID != "" && client.RoomID != room.ID {
		s.removeFromRoom(client, client.RoomID)
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Password != p.Password {
		client.Send(NewErrorEvent("密碼錯誤"))
		return
	}

	if existing, ok := room.Players[client.ID]; ok {
		existing.Name = p.PlayerName
	} else {
		if len(room.Players) >= MaxPlayers {
			client.Send(NewErrorEvent("遊戲人數已滿"))
			return
		}
		room.joinSeq++
		room.Players[client.ID] = &Player{Client: client, Name: p.PlayerName, order: room.joinSeq}
	}

	client.Role = "player"
	s.messenger.JoinRoom(client, room.ID)
	client.Send(&Event{Type: EventJoinedGame, Data: JoinedGamePayload{PlayerName: p.PlayerName}})
	s.messenger.BroadcastToRoom(room.ID, &Event{Type: EventPlayerJoined, Data: PlayersPayload{Players: room.playerList()}})
}

// AdminJoin 把連線綁定為房間的控制者，需出示有效的管理員 token
func (s *GameService) AdminJoin(client *Client, p AdminJoinPayload) {
	if _, err := utils.ParseToken(p.Token); err != nil {
		client.Send(NewErrorEvent("無效的管理員憑證"))
		return
	}

	room, err := s.getOrLoadRoom(p.GameID)
	if err != nil {
		client.Send(NewErrorEvent(err.Error()))
		return
	}

	if client.RoomID != "" && client.RoomID != room.ID {
		s.removeFromRoom(client, client.RoomID)
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	room.AdminClient = client
	client.Role = "admin"
	s.messenger.JoinRoom(client, room.ID)
	client.Send(&Event{Type: EventAdminPlayerList, Data: PlayersPayload{Players: room.playerList()}})
}

// GetPlayers 回覆目前的玩家清單給發問的連線
func (s *GameService) GetPlayers(client *Client, p GameIDPayload) {
	room := s.registry.Get(p.GameID)
	if room == nil {
		client.Send(NewErrorEvent("找不到遊戲"))
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.AdminClient != nil && room.AdminClient.ID == client.ID {
		client.Send(&Event{Type: EventAdminPlayerList, Data: PlayersPayload{Players: room.playerList()}})
		return
	}
	client.Send(&Event{Type: EventScoreUpdate, Data: PlayersPayload{Players: room.playerList()}})
}

// StartGame 由管理員啟動遊戲：抽題、進入第一回合並排定第一題
func (s *GameService) StartGame(client *Client, p GameIDPayload) {
	room := s.registry.Get(p.GameID)
	if room == nil {
		client.Send(NewErrorEvent("找不到遊戲"))
		return
	}

	room.mu.Lock()
	if room.AdminClient == nil || room.AdminClient.ID != client.ID {
		room.mu.Unlock()
		return
	}
	if room.Status != RoomStatusWaiting {
		room.mu.Unlock()
		client.Send(NewErrorEvent("遊戲已經開始"))
		return
	}
	room.mu.Unlock()

	// 載題不持房間鎖，資料庫慢的時候不會卡住其他訊息
	questions, err := s.questionRepo.FetchRandom(QuestionPoolSize)
	if err != nil {
		log.Printf("room %s: failed to load question pool: %v", p.GameID, err)
		client.Send(NewErrorEvent("題庫載入失敗，無法開始遊戲"))
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	// 載題期間房間狀態可能已被其他指令改變，重新確認
	if room.Status != RoomStatusWaiting || room.AdminClient == nil || room.AdminClient.ID != client.ID {
		return
	}
	if len(questions) == 0 {
		client.Send(NewErrorEvent("題庫沒有題目"))
		return
	}

	room.Questions = questions
	room.Status = RoomStatusPlaying
	room.CurrentRound = 1
	room.CurrentQuestion = 0
	room.resetQuestionState()

	s.messenger.BroadcastToRoom(room.ID, &Event{Type: EventGameStarted})
	s.announceRoundLocked(room)
}

// StopGame 由管理員中止遊戲：取消計時器、踢出所有玩家並重置房間
func (s *GameService) StopGame(client *Client, p GameIDPayload) {
	room := s.registry.Get(p.GameID)
	if room == nil {
		client.Send(NewErrorEvent("找不到遊戲"))
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.AdminClient == nil || room.AdminClient.ID != client.ID {
		return
	}

	s.messenger.BroadcastToRoom(room.ID, &Event{Type: EventGameCancelled})
	for _, player := range room.Players {
		s.messenger.LeaveRoom(player.Client)
	}
	room.resetToWaiting()
}

// AdvancePhase 是管理員的手動推進：提前結束目前的階段
// 出題中等同全員作答完畢，投票中等同投票時間到，轉場中直接出下一題
func (s *GameService) AdvancePhase(client *Client, p GameIDPayload) {
	room := s.registry.Get(p.GameID)
	if room == nil {
		client.Send(NewErrorEvent("找不到遊戲"))
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.AdminClient == nil || room.AdminClient.ID != client.ID {
		return
	}
	if room.Status != RoomStatusPlaying {
		client.Send(NewErrorEvent("遊戲尚未開始"))
		return
	}

	switch room.Phase {
	case PhaseQuestion:
		s.finishQuestionEarlyLocked(room)
	case PhaseVoting:
		room.cancelTimer()
		s.messenger.BroadcastToRoom(room.ID, &Event{Type: EventTimerStop})
		s.autoVoteLocked(room)
		s.endVotingLocked(room)
	default:
		room.cancelTimer()
		s.openQuestionLocked(room)
	}
}

// SubmitAnswer 記錄玩家的作答，第一次作答有效，之後的都會被忽略
// 全部現役玩家都答完時立刻收題，不等計時器
func (s *GameService) SubmitAnswer(client *Client, p SubmitAnswerPayload) {
	room := s.registry.Get(p.GameID)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	player, ok := room.Players[client.ID]
	if !ok || player.Eliminated || room.Status != RoomStatusPlaying {
		return
	}
	if room.Phase != PhaseQuestion {
		client.Send(NewTooLateEvent("這一題已經結束"))
		return
	}
	if _, answered := room.Answers[client.ID]; answered {
		return
	}

	room.Answers[client.ID] = p.Answer

	if s.allActiveAnsweredLocked(room) {
		s.finishQuestionEarlyLocked(room)
	}
}

// HandleDisconnect 處理連線關閉：把玩家移出房間
// 斷線視為缺答，剩下的人都已作答時直接收題
func (s *GameService) HandleDisconnect(client *Client) {
	if client.RoomID == "" {
		return
	}
	s.removeFromRoom(client, client.RoomID)
}

// removeFromRoom 把連線從指定房間徹底清掉
// 斷線之外，同一條連線改加入別的房間時也要走這裡，
// 否則舊房間會留下一個永遠缺答的幽靈玩家
func (s *GameService) removeFromRoom(client *Client, roomID string) {
	room := s.registry.Get(roomID)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.AdminClient != nil && room.AdminClient.ID == client.ID {
		// 管理員離開不重置房間，等重新 admin_join 再綁定
		// 同一條連線可能同時也是玩家，繼續往下清
		room.AdminClient = nil
	}

	if _, ok := room.Players[client.ID]; !ok {
		return
	}
	delete(room.Players, client.ID)
	delete(room.Answers, client.ID)

	if room.Status != RoomStatusPlaying {
		s.messenger.BroadcastToRoom(room.ID, &Event{Type: EventPlayerJoined, Data: PlayersPayload{Players: room.playerList()}})
		return
	}

	switch room.Phase {
	case PhaseQuestion:
		if s.allActiveAnsweredLocked(room) {
			s.finishQuestionEarlyLocked(room)
		}
	case PhaseVoting:
		delete(room.Votes, client.ID)
		delete(room.correctSet, client.ID)
		if s.allVotedLocked(room) {
			room.cancelTimer()
			s.endVotingLocked(room)
		}
	}
}

// LiveStatus 回傳房間的即時狀態，房間尚未載入時 ok 為 false
func (s *GameService) LiveStatus(roomID string) (status RoomStatus, players int, ok bool) {
	room := s.registry.Get(roomID)
	if room == nil {
		return "", 0, false
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.Status, len(room.Players), true
}

// allActiveAnsweredLocked 檢查是否所有現役玩家都已作答
func (s *GameService) allActiveAnsweredLocked(room *Room) bool {
	if room.Answers == nil {
		return false
	}
	active := 0
	for id, p := range room.Players {
		if p.Eliminated {
			continue
		}
		active++
		if _, ok := room.Answers[id]; !ok {
			return false
		}
	}
	return active > 0
}

// finishQuestionEarlyLocked 在計時器之前收題：通知客戶端停表後結算
func (s *GameService) finishQuestionEarlyLocked(room *Room) {
	room.cancelTimer()
	s.messenger.BroadcastToRoom(room.ID, &Event{Type: EventTimerStop})
	s.closeQuestionLocked(room)
}
