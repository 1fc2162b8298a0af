package main

import (
	"flag"
	"log/slog"
	"os"

	"yashubustudio/advisor/internal/app"
)

func main() {
	configPath := flag.String("config", "", "Path to config.json (default: ./config.json)")
	flag.Parse()
	if err := app.Run(*configPath); err != nil {
		slog.Error("advisor exited", "error", err)
		os.Exit(1)
	}
}
