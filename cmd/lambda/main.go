package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"

	"github.com/tendant/memento/internal/app"
	"github.com/tendant/memento/pkg/memento/config"
)

func main() {
	start := time.Now()

	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(app.NewLogger(os.Stdout, serverConfig))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	application, err := app.New(ctx, serverConfig)
	if err != nil {
		slog.Error("Failed to build application", "error", err)
		os.Exit(1)
	}

	adapter := chiadapter.NewV2(application.Router)
	slog.Info("Lambda cold start completed", "duration", time.Since(start))

	lambda.Start(adapter.ProxyWithContextV2)
}
