package main

import (
	"context"
	"os"

	applog "github.com/pageza/foodgram/backend/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		applog.Error(context.Background(), "command failed", "error", err)
		os.Exit(1)
	}
}
