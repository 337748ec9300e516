package main

import (
	"os"

	"go-oms/internal/app"
	"go-oms/internal/bootstrap"
	"go-oms/internal/config"
	"go-oms/internal/shared/apperror"
	"go-oms/internal/shared/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	path, err := config.PathFromArgs("api", os.Args[1:])
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

	apperror.Init()
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())

	// build dependency + routes
	cleanup, err := app.BuildApp(r, cfg, l)
	if err != nil {
		l.Fatal("build app failed", zap.Error(err))
	}

	bootstrap.StartHTTPServer(r, cfg.Server, bootstrap.NewStdoutAuditLogger(l), cleanup)
}
