package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryGetMissing(t *testing.T) {
	reg := NewRoomRegistry()
	require.Nil(t, reg.Get("1"))
	require.Equal(t, 0, reg.Len())
}

func TestRegistryGetOrCreateReturnsExisting(t *testing.T) {
	reg := NewRoomRegistry()

	first := reg.GetOrCreate("1", func() *Room { return NewRoom("1", "room", "p1") })
	second := reg.GetOrCreate("1", func() *Room {
		t.Fatal("create should not run for an existing room")
		return nil
	})

	require.Same(t, first, second)
	require.Equal(t, 1, reg.Len())
}

func TestRegistryConcurrentCreateSingleInstance(t *testing.T) {
	reg := NewRoomRegistry()

	const workers = 32
	rooms := make([]*Room, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			rooms[i] = reg.GetOrCreate("1", func() *Room { return NewRoom("1", "room", "p1") })
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		require.Same(t, rooms[0], rooms[i])
	}
	require.Equal(t, 1, reg.Len())
}

func TestRegistryDeleteIdempotent(t *testing.T) {
	reg := NewRoomRegistry()
	reg.GetOrCreate("1", func() *Room { return NewRoom("1", "room", "p1") })

	reg.Delete("1")
	require.Nil(t, reg.Get("1"))

	// 重複刪除與刪除不存在的房間都不該出事
	reg.Delete("1")
	reg.Delete("2")
	require.Equal(t, 0, reg.Len())
}

func TestRegistryIsolatesRooms(t *testing.T) {
	reg := NewRoomRegistry()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("%d", i)
		reg.GetOrCreate(id, func() *Room { return NewRoom(id, "room "+id, "p1") })
	}

	require.Equal(t, 5, reg.Len())
	reg.Delete("3")
	require.Nil(t, reg.Get("3"))
	require.NotNil(t, reg.Get("2"))
	require.Equal(t, 4, reg.Len())
}
