package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/plant-tag-config/api"
	"github.com/rpupo63/plant-tag-config/config"
	"github.com/rpupo63/plant-tag-config/database"
	"github.com/rpupo63/plant-tag-config/models"
	"github.com/rpupo63/plant-tag-config/services"
	"github.com/rpupo63/plant-tag-config/session"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	setupLogger(c)
	log.Info().Msg("Initializing app...")

	db, err := database.Open(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	log.Info().Str("db_type", config.GetString(c, "DB_TYPE", "memory")).Msg("Database ready")

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, config.GetString(c, "GENERATE_MODELS_OUT", "")); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		if n := models.GenerateColumnMismatchReport(db); n > 0 {
			os.Exit(1)
		}
		return
	}

	catalog, err := config.LoadCatalog(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading catalog")
	}

	idleTTL := time.Duration(config.GetInt(c, "SESSION_IDLE_MINUTES", 60)) * time.Minute
	sessions := session.NewStore(catalog, idleTTL)
	go sweepSessions(sessions, idleTTL)

	configurator := services.NewConfigurator(database.New(db), catalog)

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(configurator, sessions, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// setupLogger configures the global zerolog logger from LOG_LEVEL and
// LOG_PRETTY.
func setupLogger(c map[string]string) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if config.GetBool(c, "LOG_PRETTY", true) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// sweepSessions drops idle sessions once per idleTTL.
func sweepSessions(sessions *session.Store, idleTTL time.Duration) {
	if idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(idleTTL)
	defer ticker.Stop()
	for range ticker.C {
		if n := sessions.Sweep(); n > 0 {
			log.Info().Int("expired", n).Msg("idle sessions removed")
		}
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-ch)
}
