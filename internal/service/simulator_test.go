package service

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guzus/llm-mafia-game/internal/config"
	"github.com/guzus/llm-mafia-game/internal/models"
	"github.com/guzus/llm-mafia-game/internal/repository"
	ws "github.com/guzus/llm-mafia-game/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubInvoker 固定回复的调用器
type stubInvoker struct {
	reply string
	calls int64
}

func (s *stubInvoker) Invoke(ctx context.Context, model, prompt string) (string, error) {
	atomic.AddInt64(&s.calls, 1)
	return s.reply, nil
}

func testSimConfig(numGames int, parallel bool) (config.GameConfig, config.SimulationConfig) {
	gameCfg := config.GameConfig{
		Models:         []string{"test/alpha", "test/bravo", "test/charlie"},
		PlayersPerGame: 3,
		MafiaCount:     1,
		DoctorCount:    0,
		MaxRounds:      1,
		Language:       "English",
		GameType:       "Mafia",
		RandomSeed:     42,
	}
	simCfg := config.SimulationConfig{
		NumGames:   numGames,
		Parallel:   parallel,
		MaxWorkers: 2,
	}
	return gameCfg, simCfg
}

func TestSimulator_SequentialRun(t *testing.T) {
	db := repository.SetupTestDB(t)
	gameCfg, simCfg := testSimConfig(3, false)

	// 全员弃权：无击杀无投票，达到回合上限后平局
	sim := NewSimulator(db, gameCfg, simCfg, 0, &stubInvoker{reply: "I pass."}, nil, zap.NewNop())

	result, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.GamesRequested)
	assert.Equal(t, 3, result.GamesCompleted)
	assert.Equal(t, 0, result.GamesFailed)
	assert.Equal(t, 0, result.SaveFailures)
	assert.Equal(t, 3, result.Winners[models.WinnerDraw])
	assert.Len(t, result.Records, 3)
	assert.NotEmpty(t, result.ModelStats)

	// 全部落库
	repo := repository.NewGameRecordRepository(db)
	saved, err := repo.FindRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, saved, 3)
	for _, record := range saved {
		assert.Equal(t, models.WinnerDraw, record.Winner)
		assert.Len(t, record.Participants, 3)
	}
}

func TestSimulator_ParallelRun(t *testing.T) {
	db := repository.SetupTestDB(t)
	gameCfg, simCfg := testSimConfig(5, true)

	sim := NewSimulator(db, gameCfg, simCfg, 0, &stubInvoker{reply: "I pass."}, nil, zap.NewNop())

	result, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.GamesCompleted)
	assert.Equal(t, 0, result.GamesFailed)

	repo := repository.NewGameRecordRepository(db)
	saved, err := repo.FindRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, saved, 5)

	// 每局game_id唯一
	seen := make(map[string]bool)
	for _, record := range saved {
		assert.False(t, seen[record.GameID])
		seen[record.GameID] = true
	}
}

func TestSimulator_NoDatabase(t *testing.T) {
	gameCfg, simCfg := testSimConfig(2, false)

	sim := NewSimulator(nil, gameCfg, simCfg, 0, &stubInvoker{reply: "I pass."}, nil, zap.NewNop())

	result, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.GamesCompleted)
	assert.Equal(t, 0, result.SaveFailures)
	assert.Len(t, result.Records, 2)
}

func TestSimulator_CanceledContext(t *testing.T) {
	gameCfg, simCfg := testSimConfig(10, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := NewSimulator(nil, gameCfg, simCfg, 0, &stubInvoker{reply: "I pass."}, nil, zap.NewNop())

	result, err := sim.Run(ctx)
	assert.Error(t, err)
	assert.Zero(t, result.GamesCompleted)
}

func TestSimulator_InvalidGameConfig(t *testing.T) {
	gameCfg, simCfg := testSimConfig(2, false)
	gameCfg.MafiaCount = 0

	sim := NewSimulator(nil, gameCfg, simCfg, 0, &stubInvoker{reply: "I pass."}, nil, zap.NewNop())

	result, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.GamesFailed)
	assert.Zero(t, result.GamesCompleted)
}

func TestSimulator_BroadcastsToHub(t *testing.T) {
	gameCfg, simCfg := testSimConfig(1, false)

	hub := ws.NewHub(zap.NewNop())
	go hub.Run()

	client := &ws.Client{ID: "spectator", Hub: hub, Send: make(chan []byte, 64)}
	hub.Register(client)

	sim := NewSimulator(nil, gameCfg, simCfg, 0, &stubInvoker{reply: "I pass."}, hub, zap.NewNop())

	_, err := sim.Run(context.Background())
	require.NoError(t, err)

	// 依次收到: connected, game_started, game_finished
	types := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		select {
		case data := <-client.Send:
			var msg ws.Message
			require.NoError(t, json.Unmarshal(data, &msg))
			types = append(types, msg.Type)
		case <-time.After(time.Second):
			t.Fatal("等待观战消息超时")
		}
	}
	assert.Equal(t, []string{
		ws.MessageTypeConnected,
		ws.MessageTypeGameStarted,
		ws.MessageTypeGameFinished,
	}, types)
}

func TestSimulator_DefaultsToOneGame(t *testing.T) {
	gameCfg, simCfg := testSimConfig(0, false)

	sim := NewSimulator(nil, gameCfg, simCfg, 0, &stubInvoker{reply: "I pass."}, nil, zap.NewNop())

	result, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.GamesRequested)
	assert.Equal(t, 1, result.GamesCompleted)
}
