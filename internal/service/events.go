package service

import "encoding/json"

// Event 代表一則送往客戶端的即時訊息
// Type 標示事件種類，Data 為該事件對應的載荷
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// 伺服器發出的事件種類
const (
	EventJoinedGame       = "joined_game"
	EventPlayerJoined     = "player_joined"
	EventAdminPlayerList  = "admin_player_list"
	EventGameStarted      = "game_started"
	EventShowRoundStart   = "show_round_start"
	EventNewQuestion      = "new_question"
	EventTimerStop        = "timer_stop"
	EventQuestionResult   = "question_result"
	EventVotingPhase      = "voting_phase"
	EventVoteRecorded     = "vote_recorded"
	EventVoteFailed       = "vote_failed"
	EventPlayerEliminated = "player_eliminated"
	EventScoreUpdate      = "score_update"
	EventPointsReceived   = "points_received"
	EventQuestionSummary  = "admin_question_summary"
	EventQuestionSkipped  = "question_skipped"
	EventRoundEnded       = "round_ended"
	EventGameEnded        = "game_ended"
	EventGameCancelled    = "game_cancelled"
	EventCloseTab         = "close_tab"
	EventError            = "error"
	EventTooLate          = "too_late"
)

// 客戶端送來的訊息種類
const (
	MessageJoinGame     = "join_game"
	MessageAdminJoin    = "admin_join"
	MessageGetPlayers   = "get_players"
	MessageStartGame    = "start_game"
	MessageStopGame     = "stop_game"
	MessageSubmitAnswer = "submit_answer"
	MessageVotePlayer   = "vote_player"
	MessageNextQuestion = "next_question"
)

// InboundMessage 是客戶端訊息的外層結構
// Data 依 Type 再解析成對應的載荷，在進入狀態機之前完成驗證
type InboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type JoinGamePayload struct {
	GameID     string `json:"game_id"`
	Password   string `json:"password"`
	PlayerName string `json:"player_name"`
}

type AdminJoinPayload struct {
	GameID string `json:"game_id"`
	Token  string `json:"token"`
}

type GameIDPayload struct {
	GameID string `json:"game_id"`
}

type SubmitAnswerPayload struct {
	GameID string `json:"game_id"`
	Answer string `json:"answer"`
}

type VotePlayerPayload struct {
	GameID   string `json:"game_id"`
	TargetID string `json:"target_id"`
}

// PlayerInfo 是對外呈現的玩家狀態
type PlayerInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Eliminated bool   `json:"eliminated"`
}

type JoinedGamePayload struct {
	PlayerName string `json:"player_name"`
}

type PlayersPayload struct {
	Players []PlayerInfo `json:"players"`
}

type RoundStartPayload struct {
	Round int `json:"round"`
}

type NewQuestionPayload struct {
	Round       int               `json:"round"`
	QuestionNum int               `json:"question_num"`
	Question    string            `json:"question"`
	Options     map[string]string `json:"options"`
}

type QuestionResultPayload struct {
	CorrectAnswer    string       `json:"correct_answer"`
	CorrectPlayers   []PlayerInfo `json:"correct_players"`
	IncorrectPlayers []PlayerInfo `json:"incorrect_players"`
}

type VotingPhasePayload struct {
	EligibleTargets []PlayerInfo `json:"eligible_targets"`
	TimeLimit       int          `json:"time_limit"`
}

type VoteRecordedPayload struct {
	Target string `json:"target"`
	Points int    `json:"points"`
}

type VoteFailedPayload struct {
	Message         string       `json:"message"`
	EligibleTargets []PlayerInfo `json:"eligible_targets"`
}

type PlayerEliminatedPayload struct {
	Name string `json:"name"`
}

type PointsReceivedPayload struct {
	Points  int      `json:"points"`
	Message string   `json:"message"`
	Voters  []string `json:"voters"`
}

type QuestionSummaryPayload struct {
	Round            int            `json:"round"`
	QuestionNum      int            `json:"question_num"`
	CorrectPlayers   []PlayerInfo   `json:"correct_players"`
	IncorrectPlayers []PlayerInfo   `json:"incorrect_players"`
	PointsAwarded    map[string]int `json:"points_awarded"`
	Scores           []PlayerInfo   `json:"scores"`
}

type QuestionSkippedPayload struct {
	Round       int `json:"round"`
	QuestionNum int `json:"question_num"`
}

type RoundEndedPayload struct {
	NextRound int `json:"next_round"`
}

type GameEndedPayload struct {
	FinalScores []PlayerInfo `json:"final_scores"`
	Winner      string       `json:"winner"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewErrorEvent 建立一個只送給當事連線的錯誤事件
func NewErrorEvent(message string) *Event {
	return &Event{Type: EventError, Data: ErrorPayload{Message: message}}
}

// NewTooLateEvent 建立階段已結束的逾時回覆，與一般錯誤區分開來
func NewTooLateEvent(message string) *Event {
	return &Event{Type: EventTooLate, Data: ErrorPayload{Message: message}}
}
