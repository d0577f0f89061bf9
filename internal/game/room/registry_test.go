package room_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/snakeladder/internal/game/dice"
	"github.com/cory-johannsen/snakeladder/internal/game/room"
)

func newPlayer(id string) *room.Player {
	return &room.Player{ID: id, Name: "player " + id}
}

func TestCreateAndJoin(t *testing.T) {
	reg := room.NewRegistry(4)
	r := reg.Create("ABC123", newPlayer("p1"))
	require.NotNil(t, r)
	assert.True(t, reg.Exists("ABC123"))
	assert.Equal(t, 1, r.Len())

	_, err := reg.Join("ABC123", newPlayer("p2"))
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestJoinUnknownRoom(t *testing.T) {
	reg := room.NewRegistry(4)
	_, err := reg.Join("NOPE", newPlayer("p1"))
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

// TestJoinFullRoom verifies that joining a room at capacity fails and
// leaves the roster length unchanged.
func TestJoinFullRoom(t *testing.T) {
	reg := room.NewRegistry(4)
	reg.Create("FULL00", newPlayer("p0"))
	for i := 1; i < 4; i++ {
		_, err := reg.Join("FULL00", newPlayer(fmt.Sprintf("p%d", i)))
		require.NoError(t, err)
	}

	_, err := reg.Join("FULL00", newPlayer("p4"))
	assert.ErrorIs(t, err, room.ErrRoomFull)
	assert.Len(t, reg.Players("FULL00"), 4)
}

func TestPlayersSnapshotOrder(t *testing.T) {
	reg := room.NewRegistry(4)
	reg.Create("ORDER0", newPlayer("a"))
	_, err := reg.Join("ORDER0", newPlayer("b"))
	require.NoError(t, err)
	_, err = reg.Join("ORDER0", newPlayer("c"))
	require.NoError(t, err)

	players := reg.Players("ORDER0")
	require.Len(t, players, 3)
	assert.Equal(t, "a", players[0].ID)
	assert.Equal(t, "b", players[1].ID)
	assert.Equal(t, "c", players[2].ID)
}

func TestPlayersUnknownRoom(t *testing.T) {
	reg := room.NewRegistry(4)
	assert.Empty(t, reg.Players("NOPE"))
}

// TestPlayersIsACopy verifies that the returned snapshot does not alias the
// live roster.
func TestPlayersIsACopy(t *testing.T) {
	reg := room.NewRegistry(4)
	reg.Create("COPY00", newPlayer("a"))

	snap := reg.Players("COPY00")
	snap[0].Position = 99

	live, err := reg.FindPlayer("COPY00", "a")
	require.NoError(t, err)
	assert.Equal(t, 0, live.Position)
}

func TestRemovePlayer(t *testing.T) {
	reg := room.NewRegistry(4)
	reg.Create("RM0000", newPlayer("a"))
	_, err := reg.Join("RM0000", newPlayer("b"))
	require.NoError(t, err)

	assert.True(t, reg.Remove("RM0000", "a"))
	players := reg.Players("RM0000")
	require.Len(t, players, 1)
	assert.Equal(t, "b", players[0].ID)

	assert.False(t, reg.Remove("NOPE", "a"))
}

func TestRemoveLastPlayerKeepsRoomUntilDelete(t *testing.T) {
	reg := room.NewRegistry(4)
	reg.Create("LAST00", newPlayer("a"))

	// Roster deletion and room deletion are separate steps: the close
	// handler pairs Remove with Delete so the two are observed together.
	assert.True(t, reg.Remove("LAST00", "a"))
	assert.True(t, reg.Exists("LAST00"))

	reg.Delete("LAST00")
	assert.False(t, reg.Exists("LAST00"))
	_, err := reg.Join("LAST00", newPlayer("b"))
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestFindPlayer(t *testing.T) {
	reg := room.NewRegistry(4)
	reg.Create("FIND00", newPlayer("a"))

	p, err := reg.FindPlayer("FIND00", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", p.ID)

	_, err = reg.FindPlayer("FIND00", "zz")
	assert.ErrorIs(t, err, room.ErrUnknownPlayer)

	_, err = reg.FindPlayer("NOPE", "a")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestGenerateCode(t *testing.T) {
	src := dice.NewSeededSource(7)
	code := room.GenerateCode(src)
	assert.Len(t, code, room.CodeLength)
	for _, c := range code {
		assert.Contains(t, "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ", string(c))
	}
}

// TestGenerateCode_Property verifies shape for arbitrary seeds.
func TestGenerateCode_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		code := room.GenerateCode(dice.NewSeededSource(seed))
		assert.Len(rt, code, room.CodeLength)
	})
}
