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

	path, err := config.PathFromArgs("consumer", os.Args[1:])
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

	if err := app.RunConsumer(cfg, l); err != nil {
		l.Fatal("run consumer failed", zap.Error(err))
	}
}
