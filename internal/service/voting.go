package service

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// startVotingLocked 進入投票階段
// 只有本題答對的人有投票權，名單只發給他們
func (s *GameService) startVotingLocked(room *Room, correct, incorrect map[string]bool) {
	room.Phase = PhaseVoting
	room.correctSet = correct
	room.incorrectSet = incorrect
	room.Votes = make(map[string]string)
	room.RoundPoints = make(map[string]int)
	room.votingDeadline = time.Now().Add(s.timings.Voting)

	event := &Event{Type: EventVotingPhase, Data: VotingPhasePayload{
		EligibleTargets: room.eligibleTargets(),
		TimeLimit:       int(s.timings.Voting.Seconds()),
	}}
	for id := range correct {
		if p, ok := room.Players[id]; ok {
			p.Client.Send(event)
		}
	}

	room.schedule(s.timings.Voting, s.votingTimeoutLocked)
}

// CastVote 處理玩家的投票
// 對象不合法時回覆更新過的名單，而不是默默失敗
func (s *GameService) CastVote(client *Client, p VotePlayerPayload) {
	room := s.registry.Get(p.GameID)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Phase != PhaseVoting {
		client.Send(NewTooLateEvent("投票已經結束"))
		return
	}
	if !room.correctSet[client.ID] {
		return
	}
	if _, voted := room.Votes[client.ID]; voted {
		return
	}

	target, ok := room.Players[p.TargetID]
	if !ok || !room.incorrectSet[p.TargetID] || target.Eliminated ||
		room.RoundPoints[p.TargetID] >= RoundVoteCap || target.Score >= EliminationScore {
		client.Send(&Event{Type: EventVoteFailed, Data: VoteFailedPayload{
			Message:         "這名玩家目前不能被投票",
			EligibleTargets: room.eligibleTargets(),
		}})
		return
	}

	s.recordVoteLocked(room, client.ID, p.TargetID)

	if s.allVotedLocked(room) {
		room.cancelTimer()
		s.messenger.BroadcastToRoom(room.ID, &Event{Type: EventTimerStop})
		s.endVotingLocked(room)
	}
}

// recordVoteLocked 記下一票並計分
// 每票的分數等於當前回合數，但受兩個上限節制：
// 單一投票階段最多被灌 RoundVoteCap 分，總分最多累積到 EliminationScore
func (s *GameService) recordVoteLocked(room *Room, voterID, targetID string) {
	target := room.Players[targetID]

	points := room.CurrentRound
	if max := RoundVoteCap - room.RoundPoints[targetID]; points > max {
		points = max
	}
	if max := EliminationScore - target.Score; points > max {
		points = max
	}

	room.Votes[voterID] = targetID
	room.RoundPoints[targetID] += points
	target.Score += points

	if voter, ok := room.Players[voterID]; ok {
		voter.Client.Send(&Event{Type: EventVoteRecorded, Data: VoteRecordedPayload{
			Target: target.Name,
			Points: points,
		}})
	}

	// 分數變動同步給整個房間與管理員
	scoreEvent := &Event{Type: EventScoreUpdate, Data: PlayersPayload{Players: room.playerList()}}
	s.messenger.BroadcastToRoom(room.ID, scoreEvent)
	if room.AdminClient != nil {
		room.AdminClient.Send(scoreEvent)
	}

	if target.Score >= EliminationScore && !target.Eliminated {
		now := time.Now()
		target.Eliminated = true
		target.EliminatedAt = &now
		s.messenger.BroadcastToRoom(room.ID, &Event{
			Type: EventPlayerEliminated,
			Data: PlayerEliminatedPayload{Name: target.Name},
		})
	}

	// 目標再也不能被投時，把新名單發給還沒投票的人
	if room.RoundPoints[targetID] >= RoundVoteCap || target.Eliminated {
		remaining := int(time.Until(room.votingDeadline).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		refreshed := &Event{Type: EventVotingPhase, Data: VotingPhasePayload{
			EligibleTargets: room.eligibleTargets(),
			TimeLimit:       remaining,
		}}
		for id := range room.correctSet {
			if _, voted := room.Votes[id]; voted {
				continue
			}
			if p, ok := room.Players[id]; ok {
				p.Client.Send(refreshed)
			}
		}
	}
}

// allVotedLocked 檢查還在線上的答對者是否都已投票
func (s *GameService) allVotedLocked(room *Room) bool {
	for id := range room.correctSet {
		if _, ok := room.Players[id]; !ok {
			continue
		}
		if _, voted := room.Votes[id]; !voted {
			return false
		}
	}
	return true
}

// votingTimeoutLocked 投票時間到：沒投票的人自動隨機投給一個還能投的對象
func (s *GameService) votingTimeoutLocked(room *Room) {
	if room.Phase != PhaseVoting {
		return
	}
	s.autoVoteLocked(room)
	s.endVotingLocked(room)
}

// autoVoteLocked 替每個沒投票的答對者隨機選一個合法對象
// 沒有合法對象時該玩家就不投
func (s *GameService) autoVoteLocked(room *Room) {
	for id := range room.correctSet {
		if _, voted := room.Votes[id]; voted {
			continue
		}
		if _, ok := room.Players[id]; !ok {
			continue
		}
		targets := room.eligibleTargets()
		if len(targets) == 0 {
			continue
		}
		pick := targets[rand.Intn(len(targets))]
		s.recordVoteLocked(room, id, pick.ID)
	}
}

// endVotingLocked 結束投票：告知每個被灌分的玩家分數來源、
// 給管理員完整結算，再檢查是否只剩一人後前進下一題
func (s *GameService) endVotingLocked(room *Room) {
	if room.Phase != PhaseVoting {
		return
	}
	room.Phase = PhaseIdle

	votersByTarget := make(map[string][]string)
	for voterID, targetID := range room.Votes {
		if voter, ok := room.Players[voterID]; ok {
			votersByTarget[targetID] = append(votersByTarget[targetID], voter.Name)
		}
	}

	pointsAwarded := make(map[string]int)
	for targetID := range room.incorrectSet {
		target, ok := room.Players[targetID]
		if !ok {
			continue
		}
		points := room.RoundPoints[targetID]
		pointsAwarded[target.Name] = points
		// 沒被投到的人也要知道自己這題拿了零分
		voters := votersByTarget[targetID]
		sort.Strings(voters)
		target.Client.Send(&Event{Type: EventPointsReceived, Data: PointsReceivedPayload{
			Points:  points,
			Message: fmt.Sprintf("你這一題被投了 %d 分", points),
			Voters:  voters,
		}})
	}

	if room.AdminClient != nil {
		room.AdminClient.Send(&Event{Type: EventQuestionSummary, Data: QuestionSummaryPayload{
			Round:            room.CurrentRound,
			QuestionNum:      room.CurrentQuestion + 1,
			CorrectPlayers:   room.infosFromSet(room.correctSet),
			IncorrectPlayers: room.infosFromSet(room.incorrectSet),
			PointsAwarded:    pointsAwarded,
			Scores:           room.playerList(),
		}})
	}

	if room.activeCount() <= 1 {
		s.endGameLocked(room)
		return
	}
	s.advanceQuestionLocked(room)
}
