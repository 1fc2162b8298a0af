package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"yashubustudio/advisor/advisor"
)

const fyneAppID = "yashubustudio.advisor"

// Run loads the configuration and artifacts and starts the desktop UI.
func Run(configPath string) error {
	cfg, err := advisor.LoadConfig(configPath)
	if err != nil {
		return err
	}

	a := fyneapp.NewWithID(fyneAppID)
	u := buildUI(a, cfg, configPath)
	logger := slog.New(slog.NewTextHandler(io.MultiWriter(os.Stderr, newLogWriter(u.pushLogLine)), nil))

	svc, err := advisor.NewServiceFromConfig(cfg, logger)
	if err != nil {
		err = fmt.Errorf("サービス初期化に失敗しました: %w", err)
		u.showFatal(err)
		return err
	}
	defer svc.Close()

	u.attach(svc)
	u.w.ShowAndRun()
	return nil
}
