package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// enterVoting 讓指定的玩家答對、其餘玩家答錯，把房間推進投票階段
func enterVoting(t *testing.T, svc *GameService, gameID string, room *Room, correct []*Client, wrong []*Client) {
	t.Helper()
	correctLetter, wrongLetter := correctAndWrong(room)
	for _, c := range correct {
		svc.SubmitAnswer(c, SubmitAnswerPayload{GameID: gameID, Answer: correctLetter})
	}
	for _, c := range wrong {
		svc.SubmitAnswer(c, SubmitAnswerPayload{GameID: gameID, Answer: wrongLetter})
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	require.Equal(t, PhaseVoting, room.Phase)
}

func TestVotingPhaseOnlyNotifiesCorrectPlayers(t *testing.T) {
	svc, _ := newTestService(nil)
	gameID := createGame(t, svc)
	alice := joinPlayer(t, svc, gameID, "Alice")
	bob := joinPlayer(t, svc, gameID, "Bob")
	room := startedRoom(t, svc, gameID)
	defer haltRoom(room)

	enterVoting(t, svc, gameID, room, []*Client{alice}, []*Client{bob})

	aliceEvents := drainEvents(alice)
	require.NotEmpty(t, eventsOfType(aliceEvents, EventVotingPhase))

	bobEvents := drainEvents(bob)
	require.Empty(t, eventsOfType(bobEvents, EventVotingPhase), "incorrect players get no ballot")
}

func TestVotePointsEqualRoundNumber(t *testing.T) {
	svc, _ := newTestService(nil)
	gameID := createGame(t, svc)
	alice := joinPlayer(t, svc, gameID, "Alice")
	bob := joinPlayer(t, svc, gameID, "Bob")
	carol := joinPlayer(t, svc, gameID, "Carol")
	room := startedRoom(t, svc, gameID)
	defer haltRoom(room)

	room.mu.Lock()
	room.CurrentRound = 2
	room.mu.Unlock()

	enterVoting(t, svc, gameID, room, []*Client{alice}, []*Client{bob, carol})
	svc.CastVote(alice, VotePlayerPayload{GameID: gameID, TargetID: bob.ID})

	room.mu.Lock()
	defer room.mu.Unlock()
	require.Equal(t, 2, room.Players[bob.ID].Score)

	events := drainEvents(alice)
	recorded := eventsOfType(events, EventVoteRecorded)
	require.Len(t, recorded, 1)
	payload := recorded[0].Data.(VoteRecordedPayload)
	require.Equal(t, "Bob", payload.Target)
	require.Equal(t, 2, payload.Points)
}

func TestRoundVoteCapClampsPoints(t *testing.T) {
	svc, _ := newTestService(nil)
	gameID := createGame(t, svc)
	alice := joinPlayer(t, svc, gameID, "Alice")
	bob := joinPlayer(t, svc, gameID, "Bob")
	carol := joinPlayer(t, svc, gameID, "Carol")
	room := startedRoom(t, svc, gameID)
	defer haltRoom(room)

	room.mu.Lock()
	room.CurrentRound = 3
	room.mu.Unlock()

	enterVoting(t, svc, gameID, room, []*Client{alice, carol}, []*Client{bob})

	// 第三回合一票三分，但同一階段最多被灌四分：第二票只補到上限
	svc.CastVote(alice, VotePlayerPayload{GameID: gameID, TargetID: bob.ID})
	svc.CastVote(carol, VotePlayerPayload{GameID: gameID, TargetID: bob.ID})

	room.mu.Lock()
	defer room.mu.Unlock()
	require.Equal(t, RoundVoteCap, room.Players[bob.ID].Score)
	require.Equal(t, RoundVoteCap, room.RoundPoints[bob.ID])
}

func TestCapRefreshesBallotForRemainingVoters(t *testing.T) {
	svc, _ := newTestService(nil)
	gameID := createGame(t, svc)
	alice := joinPlayer(t, svc, gameID, "Alice")
	bob := joinPlayer(t, svc, gameID, "Bob")
	carol := joinPlayer(t, svc, gameID, "Carol")
	dave := joinPlayer(t, svc, gameID, "Dave")
	room := startedRoom(t, svc, gameID)
	defer haltRoom(room)

	room.mu.Lock()
	room.CurrentRound = 4 // 一票就把單階段上限灌滿
	room.mu.Unlock()

	enterVoting(t, svc, gameID, room, []*Client{alice, carol}, []*Client{bob, dave})
	drainEvents(carol)

	svc.CastVote(alice, VotePlayerPayload{GameID: gameID, TargetID: bob.ID})

	// Bob 灌滿後，還沒投票的 Carol 會收到只剩 Dave 的新名單
	carolEvents := drainEvents(carol)
	refreshed := eventsOfType(carolEvents, EventVotingPhase)
	require.NotEmpty(t, refreshed)
	payload := refreshed[len(refreshed)-1].Data.(VotingPhasePayload)
	require.Len(t, payload.EligibleTargets, 1)
	require.Equal(t, "Dave", payload.EligibleTargets[0].Name)
}

func TestEliminationAtScoreThreshold(t *testing.T) {
	svc, fm := newTestService(nil)
	gameID := createGame(t, svc)
	alice := joinPlayer(t, svc, gameID, "Alice")
	bob := joinPlayer(t, svc, gameID, "Bob")
	carol := joinPlayer(t, svc, gameID, "Carol")
	room := startedRoom(t, svc, gameID)
	defer haltRoom(room)

	room.mu.Lock()
	room.CurrentRound = 3
	room.Players[bob.ID].Score = EliminationScore - 1
	room.mu.Unlock()

	enterVoting(t, svc, gameID, room, []*Client{alice}, []*Client{bob, carol})
	svc.CastVote(alice, VotePlayerPayload{GameID: gameID, TargetID: bob.ID})

	room.mu.Lock()
	defer room.mu.Unlock()

	// 分數最多補到淘汰門檻，不會超過
	require.Equal(t, EliminationScore, room.Players[bob.ID].Score)
	require.True(t, room.Players[bob.ID].Eliminated)
	require.NotNil(t, room.Players[bob.ID].EliminatedAt)
	require.True(t, fm.hasEvent(EventPlayerEliminated))
}

func TestVoteForIneligibleTargetReturnsRefreshedList(t *testing.T) {
	svc, _ := newTestService(nil)
	gameID := createGame(t, svc)
	alice := joinPlayer(t, svc, gameID, "Alice")
	bob := joinPlayer(t, svc, gameID, "Bob")
	carol := joinPlayer(t, svc, gameID, "Carol")
	room := startedRoom(t, svc, gameID)
	defer haltRoom(room)

	enterVoting(t, svc, gameID, room, []*Client{alice, carol}, []*Client{bob})
	drainEvents(alice)

	// Carol 答對了，不能當投票對象
	svc.CastVote(alice, VotePlayerPayload{GameID: gameID, TargetID: carol.ID})

	events := drainEvents(alice)
	failed := eventsOfType(events, EventVoteFailed)
	require.Len(t, failed, 1)
	payload := failed[0].Data.(VoteFailedPayload)
	require.Len(t, payload.EligibleTargets, 1)
	require.Equal(t, "Bob", payload.EligibleTargets[0].Name)

	// 投票失敗不算投過，還可以再投
	svc.CastVote(alice, VotePlayerPayload{GameID: gameID, TargetID: bob.ID})
	room.mu.Lock()
	defer room.mu.Unlock()
	require.Equal(t, 1, room.Players[bob.ID].Score)
}

func TestDuplicateVoteIgnored(t *testing.T) {
	svc, _ := newTestService(nil)
	gameID := createGame(t, svc)
	alice := joinPlayer(t, svc, gameID, "Alice")
	bob := joinPlayer(t, svc, gameID, "Bob")
	dave := joinPlayer(t, svc, gameID, "Dave")
	carol := joinPlayer(t, svc, gameID, "Carol")
	room := startedRoom(t, svc, gameID)
	defer haltRoom(room)

	enterVoting(t, svc, gameID, room, []*Client{alice, carol}, []*Client{bob, dave})

	svc.CastVote(alice, VotePlayerPayload{GameID: gameID, TargetID: bob.ID})
	svc.CastVote(alice, VotePlayerPayload{GameID: gameID, TargetID: dave.ID})

	room.mu.Lock()
	defer room.mu.Unlock()
	require.Equal(t, 1, room.Players[bob.ID].Score)
	require.Equal(t, 0, room.Players[dave.ID].Score, "second vote from the same player is ignored")
}

func TestVoteAfterVotingEndsTooLate(t *testing.T) {
	svc, _ := newTestService(nil)
	gameID := createGame(t, svc)
	alice := joinPlayer(t, svc, gameID, "Alice")
	bob := joinPlayer(t, svc, gameID, "Bob")
	room := startedRoom(t, svc, gameID)
	defer haltRoom(room)

	enterVoting(t, svc, gameID, room, []*Client{alice}, []*Client{bob})

	svc.CastVote(alice, VotePlayerPayload{GameID: gameID, TargetID: bob.ID})
	drainEvents(alice)

	// 唯一的投票者投完，投票已結束
	svc.CastVote(alice, VotePlayerPayload{GameID: gameID, TargetID: bob.ID})
	events := drainEvents(alice)
	require.NotEmpty(t, eventsOfType(events, EventTooLate))
}

func TestAutoVoteOnTimeout(t *testing.T) {
	fm := &fakeMessenger{}
	timings := testTimings()
	timings.Voting = 40 * time.Millisecond
	svc := NewGameService(newFakeConfigRepo(), &fakeQuestionRepo{}, fm, timings)

	gameID := createGame(t, svc)
	alice := joinPlayer(t, svc, gameID, "Alice")
	bob := joinPlayer(t, svc, gameID, "Bob")
	admin := joinAdmin(t, svc, gameID)
	room := startedRoom(t, svc, gameID)
	defer haltRoom(room)

	enterVoting(t, svc, gameID, room, []*Client{alice}, []*Client{bob})

	// Alice 不投票，時間到後系統替她隨機投給唯一的合法對象
	require.Eventually(t, func() bool {
		room.mu.Lock()
		defer room.mu.Unlock()
		return room.Players[bob.ID].Score == 1
	}, time.Second, 5*time.Millisecond)

	bobEvents := drainEvents(bob)
	received := eventsOfType(bobEvents, EventPointsReceived)
	require.Len(t, received, 1)
	require.Equal(t, []string{"Alice"}, received[0].Data.(PointsReceivedPayload).Voters)

	adminEvents := drainEvents(admin)
	require.NotEmpty(t, eventsOfType(adminEvents, EventQuestionSummary))
}

func TestZeroPointTargetsStillNotified(t *testing.T) {
	svc, _ := newTestService(nil)
	gameID := createGame(t, svc)
	alice := joinPlayer(t, svc, gameID, "Alice")
	bob := joinPlayer(t, svc, gameID, "Bob")
	dave := joinPlayer(t, svc, gameID, "Dave")
	room := startedRoom(t, svc, gameID)
	defer haltRoom(room)

	enterVoting(t, svc, gameID, room, []*Client{alice}, []*Client{bob, dave})
	drainEvents(dave)

	// 唯一的投票者投給 Bob，投票隨即結束
	svc.CastVote(alice, VotePlayerPayload{GameID: gameID, TargetID: bob.ID})

	// 沒被投到的 Dave 也要收到結算，分數為零、沒有投票者
	daveEvents := drainEvents(dave)
	received := eventsOfType(daveEvents, EventPointsReceived)
	require.Len(t, received, 1)
	payload := received[0].Data.(PointsReceivedPayload)
	require.Equal(t, 0, payload.Points)
	require.Empty(t, payload.Voters)
}

func TestEliminationLeavingOnePlayerEndsGame(t *testing.T) {
	svc, fm := newTestService(nil)
	gameID := createGame(t, svc)
	alice := joinPlayer(t, svc, gameID, "Alice")
	bob := joinPlayer(t, svc, gameID, "Bob")
	room := startedRoom(t, svc, gameID)

	room.mu.Lock()
	room.Players[bob.ID].Score = EliminationScore - 1
	room.mu.Unlock()

	enterVoting(t, svc, gameID, room, []*Client{alice}, []*Client{bob})
	svc.CastVote(alice, VotePlayerPayload{GameID: gameID, TargetID: bob.ID})

	// Bob 淘汰後只剩一名現役玩家，遊戲直接結束
	room.mu.Lock()
	require.Equal(t, RoomStatusFinished, room.Status)
	room.mu.Unlock()

	events := fm.eventsOfType(EventGameEnded)
	require.Len(t, events, 1)
	payload := events[0].Data.(GameEndedPayload)
	require.Equal(t, "Alice", payload.Winner)
}
