package main

import (
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"studystreak/internal/activity"
	"studystreak/internal/bot"
	"studystreak/internal/clock"
	"studystreak/internal/handlers"
	"studystreak/internal/store"
	"studystreak/internal/tracker"
	"studystreak/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	// Logger config from env (LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT)
	loggerConfig := &logger.Config{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
		Output: getEnv("LOG_OUTPUT", "stdout"),
	}
	zapLogger, err := logger.New(loggerConfig, logger.DefaultServiceName)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		zap.L().Fatal("BOT_TOKEN is required")
	}

	dataDir := getEnv("DATA_DIR", "data")
	st, err := store.Open(dataDir, zapLogger)
	if err != nil {
		zap.L().Fatal("Failed to open store", zap.Error(err))
	}
	st.LoadAll()

	act, err := activity.Open(getEnv("ACTIVITY_LOG", "activity_log.txt"), zapLogger)
	if err != nil {
		zap.L().Fatal("Failed to open activity log", zap.Error(err))
	}
	defer act.Close()

	simClock := clock.New(time.Now())
	tr := tracker.New(st, simClock, act, zapLogger)

	b, err := bot.New(botToken, tr, zapLogger)
	if err != nil {
		zap.L().Fatal("Failed to create bot", zap.Error(err))
	}

	zap.L().Info("Bot started successfully")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.API.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		if update.Message.IsCommand() {
			handlers.HandleCommand(b, update.Message)
		} else if update.Message.Chat.IsPrivate() {
			b.SendMessage(update.Message.Chat.ID, "Use /help to see the available commands.")
		}
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
