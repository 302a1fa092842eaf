package main

import (
	"bufio"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"studystreak/internal/activity"
	"studystreak/internal/cli"
	"studystreak/internal/clock"
	"studystreak/internal/store"
	"studystreak/internal/tracker"
	"studystreak/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	// Logger config from env (LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT)
	loggerConfig := &logger.Config{
		Level:  getEnv("LOG_LEVEL", "warn"),
		Format: getEnv("LOG_FORMAT", "console"),
		Output: getEnv("LOG_OUTPUT", "stderr"),
	}
	zapLogger, err := logger.New(loggerConfig, logger.DefaultServiceName)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)

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

	ui := cli.NewUI(tr, bufio.NewReader(os.Stdin), os.Stdout)
	ui.Run()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
