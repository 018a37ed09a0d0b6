package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/guzus/llm-mafia-game/internal/config"
	"github.com/guzus/llm-mafia-game/internal/database"
	"github.com/guzus/llm-mafia-game/internal/llm"
	"github.com/guzus/llm-mafia-game/internal/logger"
	"github.com/guzus/llm-mafia-game/internal/service"
	"github.com/guzus/llm-mafia-game/internal/stats"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 命令行参数
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		numGames    = flag.Int("games", 0, "模拟局数（覆盖配置）")
		parallel    = flag.Bool("parallel", false, "并行执行")
		workers     = flag.Int("workers", 0, "并行工作协程数（覆盖配置）")
		language    = flag.String("language", "", "提示词语言: English, Spanish, French, Korean（覆盖配置）")
		noPersist   = flag.Bool("no-persist", false, "不写入数据库")
		showVersion = flag.Bool("version", false, "显示版本信息")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("LLM Mafia Simulator\n")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		os.Exit(0)
	}

	// 加载配置
	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()

	// 初始化日志系统
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 命令行覆盖配置
	if *numGames > 0 {
		cfg.Simulation.NumGames = *numGames
	}
	if *parallel {
		cfg.Simulation.Parallel = true
	}
	if *workers > 0 {
		cfg.Simulation.MaxWorkers = *workers
	}
	if *language != "" {
		cfg.Game.Language = *language
	}

	// 初始化数据库
	var db *gorm.DB
	if !*noPersist {
		if err := database.Init(&cfg.Database); err != nil {
			logger.Fatal("初始化数据库失败", zap.Error(err))
		}
		defer database.Close()

		if cfg.Database.AutoMigrate {
			if err := database.AutoMigrate(database.GetDB()); err != nil {
				logger.Fatal("数据库迁移失败", zap.Error(err))
			}
		}
		db = database.GetDB()
	}

	// 创建LLM客户端
	client, err := llm.NewClient(cfg.OpenRouter)
	if err != nil {
		logger.Fatal("创建LLM客户端失败", zap.Error(err))
	}

	// 信号取消
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("收到退出信号，正在停止模拟", zap.String("signal", sig.String()))
		cancel()
	}()

	// 运行批量模拟
	sim := service.NewSimulator(
		db,
		cfg.Game,
		cfg.Simulation,
		cfg.OpenRouter.MaxOutputTokens,
		client,
		nil,
		logger.GetLogger(),
	)

	result, err := sim.Run(ctx)
	if err != nil {
		logger.Error("模拟中断", zap.Error(err))
	}

	printSummary(result)

	if result.GamesCompleted == 0 {
		os.Exit(1)
	}
}

// printSummary 打印批次摘要
func printSummary(result *service.RunResult) {
	fmt.Printf("\n===== 模拟结果 =====\n")
	fmt.Printf("请求局数: %d\n", result.GamesRequested)
	fmt.Printf("完成局数: %d\n", result.GamesCompleted)
	fmt.Printf("失败局数: %d\n", result.GamesFailed)
	if result.SaveFailures > 0 {
		fmt.Printf("写库失败: %d\n", result.SaveFailures)
	}

	fmt.Printf("\n胜负分布:\n")
	for winner, count := range result.Winners {
		fmt.Printf("  %-10s %d\n", winner, count)
	}

	fmt.Printf("\n模型战绩:\n")
	for _, ms := range stats.Leaderboard(result.ModelStats) {
		fmt.Printf("  %-40s 场次=%d 胜=%d 胜率=%.1f%%\n",
			ms.Model, ms.GamesPlayed, ms.GamesWon, ms.WinRate*100)
	}
}
