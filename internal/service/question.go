package service

import (
	"log"
	"math/rand"
	"sort"

	"trivia_web/internal/models"
)

var optionLetters = [4]string{"a", "b", "c", "d"}

// shuffledQuestion 是洗牌後要呈現給玩家的題目
type shuffledQuestion struct {
	Options map[string]string // 顯示位置 -> 選項文字
	Correct string            // 正確選項洗牌後所在的字母
}

// shuffleOptions 隨機決定正確選項顯示的位置，
// 其餘三個選項再隨機填進剩下的格子
// 顯示的四個文字恰好是原題的四個選項，不重複也不遺漏
func shuffleOptions(q *models.Question) shuffledQuestion {
	correctIdx := 0
	for i, letter := range optionLetters {
		if letter == q.CorrectAnswer {
			correctIdx = i
		}
	}

	opts := q.Options()
	correctText := opts[correctIdx]
	others := make([]string, 0, 3)
	for i, text := range opts {
		if i != correctIdx {
			others = append(others, text)
		}
	}
	rand.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})

	slot := rand.Intn(len(optionLetters))
	display := make(map[string]string, len(optionLetters))
	display[optionLetters[slot]] = correctText
	next := 0
	for i, letter := range optionLetters {
		if i == slot {
			continue
		}
		display[letter] = others[next]
		next++
	}

	return shuffledQuestion{Options: display, Correct: optionLetters[slot]}
}

// announceRoundLocked 廣播回合開場畫面，延遲一段時間後出第一題
func (s *GameService) announceRoundLocked(room *Room) {
	s.messenger.BroadcastToRoom(room.ID, &Event{
		Type: EventShowRoundStart,
		Data: RoundStartPayload{Round: room.CurrentRound},
	})
	room.schedule(s.timings.RoundStart, s.openQuestionLocked)
}

// openQuestionLocked 出下一題
// 現役玩家少於兩人就直接結束遊戲；題目索引到達回合上限則結束回合；
// 題庫不足 45 題時以餘數繞回開頭；資料不完整的題目跳過不出
func (s *GameService) openQuestionLocked(room *Room) {
	if room.Status != RoomStatusPlaying {
		return
	}
	if room.activeCount() < 2 {
		s.endGameLocked(room)
		return
	}
	if room.CurrentQuestion >= QuestionsPerRound {
		s.endRoundLocked(room)
		return
	}
	if len(room.Questions) == 0 {
		s.endGameLocked(room)
		return
	}

	idx := ((room.CurrentRound-1)*QuestionsPerRound + room.CurrentQuestion) % len(room.Questions)
	question := &room.Questions[idx]
	if !question.Valid() {
		log.Printf("room %s: question %d failed validation, skipping", room.ID, question.ID)
		s.messenger.BroadcastToRoom(room.ID, &Event{
			Type: EventQuestionSkipped,
			Data: QuestionSkippedPayload{Round: room.CurrentRound, QuestionNum: room.CurrentQuestion + 1},
		})
		room.CurrentQuestion++
		room.schedule(s.timings.NextQuestion, s.openQuestionLocked)
		return
	}

	shuffled := shuffleOptions(question)
	room.resetQuestionState()
	room.CorrectOption = shuffled.Correct
	room.Phase = PhaseQuestion

	event := &Event{Type: EventNewQuestion, Data: NewQuestionPayload{
		Round:       room.CurrentRound,
		QuestionNum: room.CurrentQuestion + 1,
		Question:    question.Question,
		Options:     shuffled.Options,
	}}
	// 除了房間廣播外再逐一寄給每個玩家與管理員，防止個別連線漏收
	s.messenger.BroadcastToRoom(room.ID, event)
	for _, player := range room.Players {
		player.Client.Send(event)
	}
	if room.AdminClient != nil {
		room.AdminClient.Send(event)
	}

	room.schedule(s.timings.Question, s.closeQuestionLocked)
}

// closeQuestionLocked 收題結算：補缺答、劃分對錯、廣播結果
// 兩邊都有人才進投票階段，否則直接出下一題
func (s *GameService) closeQuestionLocked(room *Room) {
	if room.Phase != PhaseQuestion {
		return
	}
	room.Phase = PhaseIdle

	// 沒作答的現役玩家補上缺答，視同答錯
	for id, player := range room.Players {
		if player.Eliminated {
			continue
		}
		if _, ok := room.Answers[id]; !ok {
			room.Answers[id] = noAnswer
		}
	}

	correct := make(map[string]bool)
	incorrect := make(map[string]bool)
	for id, answer := range room.Answers {
		player, ok := room.Players[id]
		if !ok || player.Eliminated {
			continue
		}
		if answer == room.CorrectOption {
			correct[id] = true
		} else {
			incorrect[id] = true
		}
	}

	s.messenger.BroadcastToRoom(room.ID, &Event{Type: EventQuestionResult, Data: QuestionResultPayload{
		CorrectAnswer:    room.CorrectOption,
		CorrectPlayers:   room.infosFromSet(correct),
		IncorrectPlayers: room.infosFromSet(incorrect),
	}})

	if len(correct) > 0 && len(incorrect) > 0 {
		s.startVotingLocked(room, correct, incorrect)
		return
	}
	s.advanceQuestionLocked(room)
}

// advanceQuestionLocked 前進到下一題，短暫延遲後出題
func (s *GameService) advanceQuestionLocked(room *Room) {
	room.Phase = PhaseIdle
	room.CurrentQuestion++
	room.schedule(s.timings.NextQuestion, s.openQuestionLocked)
}

// endRoundLocked 結束回合：三回合打完或人數不足就結束遊戲，
// 否則進入下一回合並廣播回合轉場
func (s *GameService) endRoundLocked(room *Room) {
	if room.activeCount() < 2 || room.CurrentRound >= TotalRounds {
		s.endGameLocked(room)
		return
	}

	room.CurrentRound++
	room.CurrentQuestion = 0
	s.messenger.BroadcastToRoom(room.ID, &Event{
		Type: EventRoundEnded,
		Data: RoundEndedPayload{NextRound: room.CurrentRound},
	})
	s.announceRoundLocked(room)
}

// endGameLocked 結束遊戲：結算名次並廣播結果
// 名次依累計分數由低到高；勝者是分數最低的現役玩家
func (s *GameService) endGameLocked(room *Room) {
	room.cancelTimer()
	room.Status = RoomStatusFinished
	room.Phase = PhaseIdle

	standings := room.standings()
	winner := ""
	for _, info := range standings {
		if !info.Eliminated {
			winner = info.Name
			break
		}
	}

	s.messenger.BroadcastToRoom(room.ID, &Event{Type: EventGameEnded, Data: GameEndedPayload{
		FinalScores: standings,
		Winner:      winner,
	}})
}

// infosFromSet 把一組連線 ID 轉成對外的玩家資訊，依名字排序
func (r *Room) infosFromSet(set map[string]bool) []PlayerInfo {
	infos := make([]PlayerInfo, 0, len(set))
	for id := range set {
		if p, ok := r.Players[id]; ok {
			infos = append(infos, playerInfo(id, p))
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
