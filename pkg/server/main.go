/* Copyright 2025 Tasknest Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/robfig/cron"
	"github.com/tasknest/tasknest/pkg/clock"
	"github.com/tasknest/tasknest/pkg/server/app"
	"github.com/tasknest/tasknest/pkg/server/buildinfo"
	"github.com/tasknest/tasknest/pkg/server/config"
	"github.com/tasknest/tasknest/pkg/server/controllers"
	"github.com/tasknest/tasknest/pkg/server/database"
	"github.com/tasknest/tasknest/pkg/server/filestore"
	"github.com/tasknest/tasknest/pkg/server/log"
	"github.com/tasknest/tasknest/pkg/server/mailer"
	"gorm.io/gorm"
)

func initDB(cfg config.Config) (*gorm.DB, error) {
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db = database.OpenPostgres(cfg.DatabaseURL)
	} else {
		db = database.Open(cfg.DBPath)
	}

	database.InitSchema(db)

	seeds := database.DefaultTierSeeds()
	if cfg.TierFile != "" {
		var err error
		seeds, err = database.LoadTierSeeds(cfg.TierFile)
		if err != nil {
			return nil, errors.Wrap(err, "loading tier file")
		}
	}
	if err := database.SeedTiers(db, seeds); err != nil {
		return nil, errors.Wrap(err, "seeding subscription tiers")
	}

	return db, nil
}

func initApp(cfg config.Config) (app.App, error) {
	db, err := initDB(cfg)
	if err != nil {
		return app.App{}, err
	}

	files, err := filestore.New(cfg.DataDir)
	if err != nil {
		return app.App{}, errors.Wrap(err, "initializing file store")
	}

	var emailBackend mailer.Backend
	emailBackend, err = mailer.NewDefaultBackend()
	if err != nil {
		log.Info("SMTP not configured. Emails will be printed to stdout.")
		emailBackend = mailer.NewStdoutBackend()
	} else {
		log.Info("Email backend configured")
	}

	return app.App{
		DB:            db,
		Clock:         clock.New(),
		EmailBackend:  emailBackend,
		Files:         files,
		OAuthVerifier: app.NewGoogleVerifier(),
		BaseURL:       cfg.WebURL,
		SessionTTL:    cfg.SessionTTL,
	}, nil
}

func startCmd(args []string) {
	startFlags := flag.NewFlagSet("start", flag.ExitOnError)
	startFlags.Usage = func() {
		fmt.Printf(`Usage:
  tasknest-server start [flags]

Flags:
`)
		startFlags.PrintDefaults()
	}

	appEnv := startFlags.String("appEnv", "", "Application environment (env: APP_ENV, default: PRODUCTION)")
	port := startFlags.String("port", "", "Server port (env: PORT, default: 3001)")
	webURL := startFlags.String("webUrl", "", "Full URL to server without trailing slash (env: WebURL, example: https://example.com)")
	dbPath := startFlags.String("dbPath", "", "Path to SQLite database file (env: DBPath, default: data/server.db)")
	databaseURL := startFlags.String("databaseUrl", "", "Postgres connection string. Takes precedence over dbPath (env: DATABASE_URL)")
	dataDir := startFlags.String("dataDir", "", "Directory for uploaded task files (env: DataDir, default: data)")
	tierFile := startFlags.String("tierFile", "", "Path to a YAML file defining subscription tiers (env: TierFile)")
	reminderSchedule := startFlags.String("reminderSchedule", "", "Cron schedule for the daily reminder job (env: ReminderSchedule, default: midnight UTC)")
	logLevel := startFlags.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")

	startFlags.Parse(args)

	cfg, err := config.New(config.Params{
		AppEnv:           *appEnv,
		Port:             *port,
		WebURL:           *webURL,
		DBPath:           *dbPath,
		DatabaseURL:      *databaseURL,
		DataDir:          *dataDir,
		TierFile:         *tierFile,
		ReminderSchedule: *reminderSchedule,
		LogLevel:         *logLevel,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		startFlags.Usage()
		os.Exit(1)
	}

	log.SetLevel(cfg.LogLevel)

	a, err := initApp(cfg)
	if err != nil {
		log.ErrorWrap(err, "initializing app")
		os.Exit(1)
	}
	defer func() {
		sqlDB, err := a.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}()

	cr := cron.New()
	if err := cr.AddFunc(cfg.ReminderSchedule, func() {
		sent, err := a.SendTaskReminders()
		if err != nil {
			log.ErrorWrap(err, "sending task reminders")
			return
		}

		log.WithFields(log.Fields{
			"sent": sent,
		}).Info("Task reminders delivered")
	}); err != nil {
		log.ErrorWrap(err, "scheduling reminder job")
		os.Exit(1)
	}
	cr.Start()
	defer cr.Stop()

	ctl := controllers.New(&a)
	rc := controllers.RouteConfig{
		APIRoutes:   controllers.NewAPIRoutes(&a, ctl),
		Controllers: ctl,
	}

	r, err := controllers.NewRouter(&a, rc)
	if err != nil {
		panic(errors.Wrap(err, "initializing router"))
	}

	log.WithFields(log.Fields{
		"version": buildinfo.Version,
		"port":    cfg.Port,
	}).Info("Tasknest server starting")

	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.ErrorWrap(err, "server failed")
		os.Exit(1)
	}
}

// remindCmd runs the reminder job once and exits. It exists so that
// deployments can drive reminders from an external scheduler instead of
// the built-in cron.
func remindCmd(args []string) {
	remindFlags := flag.NewFlagSet("remind", flag.ExitOnError)
	remindFlags.Parse(args)

	cfg, err := config.New(config.Params{})
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}

	log.SetLevel(cfg.LogLevel)

	a, err := initApp(cfg)
	if err != nil {
		log.ErrorWrap(err, "initializing app")
		os.Exit(1)
	}

	sent, err := a.SendTaskReminders()
	if err != nil {
		log.ErrorWrap(err, "sending task reminders")
		os.Exit(1)
	}

	fmt.Printf("Sent %d reminder(s)\n", sent)
}

func versionCmd() {
	fmt.Printf("tasknest-server-%s\n", buildinfo.Version)
}

func rootCmd() {
	fmt.Printf(`Tasknest server - a to-do list backend

Usage:
  tasknest-server [command] [flags]

Available commands:
  start: Start the server (use 'tasknest-server start --help' for flags)
  remind: Send pending task reminders once and exit
  version: Print the version
`)
}

func main() {
	if len(os.Args) < 2 {
		rootCmd()
		return
	}

	cmd := os.Args[1]

	switch cmd {
	case "start":
		startCmd(os.Args[2:])
	case "remind":
		remindCmd(os.Args[2:])
	case "version":
		versionCmd()
	default:
		fmt.Printf("Unknown command %s\n", cmd)
		rootCmd()
		os.Exit(1)
	}
}
