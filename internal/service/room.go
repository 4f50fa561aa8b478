package service

import (
	"sort"
	"sync"
	"time"

	"trivia_web/internal/models"
)

// 遊戲規則常數
const (
	MaxPlayers        = 100 // 單一房間的玩家上限
	TotalRounds       = 3   // 回合數
	QuestionsPerRound = 15  // 每回合的題數
	QuestionPoolSize  = 45  // 開局時抽取的題目數
	EliminationScore  = 10  // 累積到此分數即遭淘汰
	RoundVoteCap      = 4   // 單一投票階段中一名玩家最多被灌的分數
	noAnswer          = "-" // 逾時未作答的填充值
)

// RoomStatus 定義房間狀態的類型
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusPlaying  RoomStatus = "playing"
	RoomStatusFinished RoomStatus = "finished"
)

// Phase 標示房間目前在一題生命週期中的哪個階段
type Phase string

const (
	PhaseIdle     Phase = "idle"     // 題與題之間，或尚未開始
	PhaseQuestion Phase = "question" // 題目開放作答中
	PhaseVoting   Phase = "voting"   // 投票階段進行中
)

// Player 代表房間內一名玩家的即時狀態
type Player struct {
	Client       *Client
	Name         string
	Score        int
	Eliminated   bool
	EliminatedAt *time.Time
	order        int // 加入順序，只用於列表排序
}

// Room 代表一場進行中的問答遊戲
// 所有欄位都由 mu 保護，對房間的任何變動（加入、作答、投票、
// 計時器觸發、管理員指令）都必須先取得鎖，彼此序列化
type Room struct {
	mu sync.Mutex

	ID       string
	Name     string
	Password string

	Status          RoomStatus
	CurrentRound    int // 0 表示尚未開始，遊戲中為 1~3
	CurrentQuestion int // 回合內的題目索引 0~14
	Questions       []models.Question

	// 當前題目的暫時狀態，每題開始時重置
	CorrectOption  string            // 洗牌後正確選項所在的字母
	Phase          Phase
	Answers        map[string]string // 連線 ID -> 作答的選項字母
	Votes          map[string]string // 投票者連線 ID -> 目標連線 ID
	RoundPoints    map[string]int    // 目標連線 ID -> 本次投票階段累積的分數
	correctSet     map[string]bool   // 本題答對者（有投票權）
	incorrectSet   map[string]bool   // 本題答錯者（可被投票）
	votingDeadline time.Time         // 投票階段的截止時間，更新名單時回報剩餘秒數用

	AdminClient *Client // 房間的控制者，斷線時清空，重新 admin_join 再綁定
	Players     map[string]*Player

	activeTimer *TimerHandle
	joinSeq     int
}

// NewRoom 依照持久化的遊戲設定建立一個等待中的房間
func NewRoom(id, name, password string) *Room {
	return &Room{
		ID:       id,
		Name:     name,
		Password: password,
		Status:   RoomStatusWaiting,
		Phase:    PhaseIdle,
		Players:  make(map[string]*Player),
	}
}

// activeCount 回傳未被淘汰的玩家數，呼叫者須持有房間鎖
func (r *Room) activeCount() int {
	count := 0
	for _, p := range r.Players {
		if !p.Eliminated {
			count++
		}
	}
	return count
}

// playerInfo 把玩家轉成對外的呈現格式
func playerInfo(id string, p *Player) PlayerInfo {
	return PlayerInfo{ID: id, Name: p.Name, Score: p.Score, Eliminated: p.Eliminated}
}

// playerList 依加入順序列出所有玩家，呼叫者須持有房間鎖
func (r *Room) playerList() []PlayerInfo {
	type entry struct {
		order int
		info  PlayerInfo
	}
	entries := make([]entry, 0, len(r.Players))
	for id, p := range r.Players {
		entries = append(entries, entry{order: p.order, info: playerInfo(id, p)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })

	infos := make([]PlayerInfo, len(entries))
	for i, e := range entries {
		infos[i] = e.info
	}
	return infos
}

// standings 依分數由低到高排序（分數最少的名次最好），同分依加入順序
func (r *Room) standings() []PlayerInfo {
	infos := r.playerList()
	sort.SliceStable(infos, func(i, j int) bool { return infos[i].Score < infos[j].Score })
	return infos
}

// eligibleTargets 列出投票階段還能被投的玩家：
// 本題答錯、尚未淘汰、本階段得分未達上限、總分未達淘汰門檻
func (r *Room) eligibleTargets() []PlayerInfo {
	targets := make([]PlayerInfo, 0, len(r.incorrectSet))
	for id := range r.incorrectSet {
		p, ok := r.Players[id]
		if !ok || p.Eliminated {
			continue
		}
		if r.RoundPoints[id] >= RoundVoteCap || p.Score >= EliminationScore {
			continue
		}
		targets = append(targets, playerInfo(id, p))
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	return targets
}

// resetQuestionState 清掉上一題留下的暫時狀態
func (r *Room) resetQuestionState() {
	r.CorrectOption = ""
	r.Answers = make(map[string]string)
	r.Votes = nil
	r.RoundPoints = nil
	r.correctSet = nil
	r.incorrectSet = nil
	r.votingDeadline = time.Time{}
}

// resetToWaiting 把房間恢復成剛建立時的樣子（stop_game 用）
func (r *Room) resetToWaiting() {
	r.cancelTimer()
	r.Status = RoomStatusWaiting
	r.Phase = PhaseIdle
	r.CurrentRound = 0
	r.CurrentQuestion = 0
	r.Questions = nil
	r.Players = make(map[string]*Player)
	r.joinSeq = 0
	r.resetQuestionState()
}

// PlayerCount 回傳目前的玩家數，供房間列表顯示用
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Players)
}
