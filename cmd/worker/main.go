package main

import (
	"os"

	"go-oms/internal/app"
	"go-oms/internal/config"
	"go-oms/internal/shared/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	path, err := config.PathFromArgs("worker", os.Args[1:])
	if err != nil {
		panic(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer l.Sync()
	zap.ReplaceGlobals(l)

	if err := app.RunWorker(cfg, l); err != nil {
		l.Fatal("run worker failed", zap.Error(err))
	}
}
