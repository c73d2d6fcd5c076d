package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/0-Luminous/taskflow/internal/config"
	"github.com/0-Luminous/taskflow/internal/db"
	"github.com/0-Luminous/taskflow/internal/repo"
	"github.com/0-Luminous/taskflow/internal/tui"
	"github.com/0-Luminous/taskflow/internal/web"
)

func main() {
	configPathFlag := flag.String("config", "", "config file path")
	dbPathFlag := flag.String("db", "", "sqlite db path")
	webFlag := flag.Bool("web", false, "enable web server")
	webOnlyFlag := flag.Bool("web-only", false, "run web server only")
	portFlag := flag.Int("port", 0, "web server port")
	dateFlag := flag.String("date", "", "selected date (YYYY-MM-DD, default today)")
	zeroFlag := flag.Float64("zero", -1, "dial zero position in degrees")
	flag.Parse()

	log := logrus.New()

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	if *dbPathFlag != "" {
		cfg.DBPath = *dbPathFlag
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "taskflow.db")
	}
	if *webFlag || *webOnlyFlag {
		cfg.WebEnabled = true
	}
	if *portFlag != 0 {
		cfg.WebPort = *portFlag
	}
	if cfg.WebPort == 0 {
		cfg.WebPort = 8080
	}
	if *zeroFlag >= 0 {
		cfg.ZeroPosition = *zeroFlag
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		log.Fatal(err)
	}

	facade, err := openFacade(cfg.DBPath, log)
	if err != nil {
		log.Fatal(err)
	}
	defer facade.Close()

	if *dateFlag != "" {
		date, err := time.ParseInLocation("2006-01-02", *dateFlag, time.Local)
		if err != nil {
			log.Fatal(err)
		}
		facade.SetSelectedDate(date)
	}

	if err := facade.Load(context.Background()); err != nil {
		log.Fatal(err)
	}

	settings := config.NewSettings(cfg.ZeroPosition)

	if cfg.WebEnabled {
		addr := fmt.Sprintf(":%d", cfg.WebPort)
		handler := web.NewServer(facade, settings, log).Handler()
		if *webOnlyFlag {
			log.WithField("addr", addr).Info("web server running")
			log.Fatal(http.ListenAndServe(addr, handler))
		}

		go func() {
			log.WithField("addr", addr).Info("web server running")
			if err := http.ListenAndServe(addr, handler); err != nil {
				log.WithError(err).Error("web server stopped")
			}
		}()
	}

	if *webOnlyFlag {
		return
	}

	if err := tui.Run(facade, settings); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

func openFacade(dbPath string, log *logrus.Logger) (*repo.Facade, error) {
	if err := config.EnsureDir(dbPath); err != nil {
		return nil, err
	}

	sqlDB, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	return repo.New(db.NewStore(sqlDB), log), nil
}
