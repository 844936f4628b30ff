package session

import (
	"encoding/json"
	"testing"

	"github.com/DataDog/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/shortestmaze/game/config"
)

func newTestPebblePersistence(t *testing.T, dir string) *PebblePersistence {
	t.Helper()
	configManager, err := config.NewManager("../../configs")
	require.NoError(t, err)

	store, err := NewPebblePersistence(dir, configManager)
	require.NoError(t, err)
	return store
}

func TestPebblePersistence(t *testing.T) {
	store := newTestPebblePersistence(t, t.TempDir())
	defer store.Close()

	testPersistenceContract(t, store)
}

func TestPebblePersistence_CompressedRecord(t *testing.T) {
	store := newTestPebblePersistence(t, t.TempDir())
	defer store.Close()

	require.NoError(t, store.Save(newPlayedSession(t, "zstd1")))

	val, closer, err := store.db.Get(sessionKey("zstd1"))
	require.NoError(t, err)
	raw, err := zstd.Decompress(nil, val)
	closer.Close()
	require.NoError(t, err)

	var data PersistedSessionData
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, "zstd1", data.ID)
	require.NotNil(t, data.GameState)
	assert.Equal(t, 2, data.GameState.OptimalSteps)
	assert.Len(t, data.GameState.PathTaken, 2)
}

func TestPebblePersistence_Reopen(t *testing.T) {
	dir := t.TempDir()

	store := newTestPebblePersistence(t, dir)
	require.NoError(t, store.Save(newPlayedSession(t, "durable")))
	require.NoError(t, store.Close())

	reopened := newTestPebblePersistence(t, dir)
	defer reopened.Close()

	ids, err := reopened.ListAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"durable"}, ids)

	loaded, err := reopened.Load("durable")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Engine.GetState().PlayerPos.Row)
	assert.Equal(t, 2, loaded.Engine.GetState().PlayerPos.Column)
}

func TestPebblePersistence_ManagerIntegration(t *testing.T) {
	store := newTestPebblePersistence(t, t.TempDir())
	defer store.Close()

	manager := NewManagerWithPersistence(store)
	manager.SetGenerator(testBoard())

	created, err := manager.Create("kv-session", createTestConfig())
	require.NoError(t, err)
	require.True(t, created.Engine.Move("right"))
	require.NoError(t, manager.Save("kv-session"))

	require.NoError(t, manager.DeleteFromMemory("kv-session"))
	loaded, err := manager.Get("kv-session")
	require.NoError(t, err)
	assert.Equal(t, created.Engine.GetPlayerPosition(), loaded.Engine.GetPlayerPosition())
}

func TestPrefixUpperBound(t *testing.T) {
	assert.Equal(t, []byte("session0"), prefixUpperBound([]byte("session/")))
	assert.Equal(t, []byte{0x01}, prefixUpperBound([]byte{0x00, 0xff}))
	assert.Nil(t, prefixUpperBound([]byte{0xff, 0xff}))
}
