package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/guzus/llm-mafia-game/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 为测试设置内存数据库
func SetupTestDB(t *testing.T) *gorm.DB {
	// 使用内存数据库进行测试（更快，不需要文件系统，在所有环境中都能工作）
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}

	// 自动迁移所有模型
	if err := db.AutoMigrate(&models.GameRecord{}); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// CreateTestGameRecord 创建测试用对局记录
func CreateTestGameRecord(winner string, ts int64) *models.GameRecord {
	if ts == 0 {
		ts = time.Now().Unix()
	}

	return &models.GameRecord{
		GameID:           uuid.NewString(),
		Timestamp:        ts,
		GameType:         "Classic Mafia",
		Language:         "English",
		ParticipantCount: 4,
		Winner:           winner,
		Participants: models.ParticipantMap{
			"gemini-flash": {Role: "Mafia", ModelName: "google/gemini-2.0-flash-001"},
			"gpt-4o-mini":  {Role: "Doctor", ModelName: "openai/gpt-4o-mini"},
			"llama-70b":    {Role: "Villager", ModelName: "meta-llama/llama-3.3-70b-instruct"},
			"deepseek":     {Role: "Villager", ModelName: "deepseek/deepseek-chat"},
		},
		Rounds: models.RoundList{
			{
				RoundNumber:  1,
				Messages:     []models.Message{{Speaker: "gemini-flash", Content: "ACTION: Kill llama-70b", Phase: "night", Role: "Mafia"}},
				Actions:      []models.ActionRecord{{Actor: "gemini-flash", Verb: "kill", Target: "llama-70b"}},
				Eliminations: []string{"llama-70b"},
				NightKilled:  "llama-70b",
				Outcome:      "llama-70b was killed by the Mafia.",
			},
		},
	}
}
