package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManagerJoinRoomMovesConnection(t *testing.T) {
	m := NewWebSocketManager()
	client := newTestClient()

	m.JoinRoom(client, "1")
	require.Equal(t, 1, m.RoomClients("1"))

	// 一條連線同時只屬於一個房間
	m.JoinRoom(client, "2")
	require.Equal(t, 0, m.RoomClients("1"))
	require.Equal(t, 1, m.RoomClients("2"))
	require.Equal(t, "2", client.RoomID)
}

func TestManagerBroadcastReachesRoomOnly(t *testing.T) {
	m := NewWebSocketManager()
	in := newTestClient()
	out := newTestClient()
	m.JoinRoom(in, "1")
	m.JoinRoom(out, "2")

	m.BroadcastToRoom("1", &Event{Type: EventGameStarted})

	require.NotEmpty(t, eventsOfType(drainEvents(in), EventGameStarted))
	require.Empty(t, drainEvents(out))
}

func TestManagerLeaveRoomClearsMembership(t *testing.T) {
	m := NewWebSocketManager()
	client := newTestClient()
	m.JoinRoom(client, "1")

	m.LeaveRoom(client)

	require.Equal(t, 0, m.RoomClients("1"))
	require.Equal(t, "", client.RoomID)
}

func TestManagerCloseRoomNotifiesWithoutTouchingRoomID(t *testing.T) {
	m := NewWebSocketManager()
	client := newTestClient()
	m.JoinRoom(client, "1")

	m.CloseRoom("1")

	require.NotEmpty(t, eventsOfType(drainEvents(client), EventCloseTab))
	require.Equal(t, 0, m.RoomClients("1"))

	// RoomID 由連線自己的清理流程（LeaveRoom）歸零，CloseRoom 不碰
	require.Equal(t, "1", client.RoomID)
	m.LeaveRoom(client)
	require.Equal(t, "", client.RoomID)
}
