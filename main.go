package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogd/api"
	"github.com/rpupo63/blogd/config"
	"github.com/rpupo63/blogd/database"
	"github.com/rpupo63/blogd/jobs"
	"github.com/rpupo63/blogd/models"
	"github.com/rpupo63/blogd/services"
	"github.com/rpupo63/blogd/storage"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	ctx := context.Background()
	c := config.New()
	if err := config.LoadSSM(ctx, c); err != nil {
		log.Fatal().Err(err).Msg("Error loading configuration from SSM")
	}

	if dsn := config.GetString(c, "SENTRY_DSN", ""); dsn != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			Environment:      config.GetString(c, "APP_ENV", "development"),
			AttachStacktrace: true,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing Sentry")
		}
		defer sentry.Flush(2 * time.Second)
	}

	fmt.Printf("DB_TYPE: %s\n", config.GetString(c, "DB_TYPE", "postgres"))
	db, err := database.Open(c)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		fmt.Printf("Error testing database connection: %v\n", err)
		os.Exit(1)
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		fmt.Println("Generating models and query helpers...")
		if err := models.GenerateModels(db); err != nil {
			fmt.Printf("Error generating models: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if config.GetBool(c, "AUTO_MIGRATE", false) {
		if err := models.Migrate(db); err != nil {
			fmt.Printf("Error migrating database: %v\n", err)
			os.Exit(1)
		}
	}

	images, err := storage.FromConfig(ctx, c)
	if err != nil {
		fmt.Printf("Error configuring image storage: %v\n", err)
		os.Exit(1)
	}

	currentDB := database.New(db)
	svc := services.New(currentDB, services.Options{
		TokenTTL:      time.Duration(config.GetInt(c, "TOKEN_TTL_HOURS", 0)) * time.Hour,
		Images:        images,
		MaxImageBytes: int64(config.GetInt(c, "MAX_IMAGE_BYTES", 0)),
	})

	scheduler := jobs.NewScheduler(time.Minute)
	if config.GetInt(c, "TOKEN_TTL_HOURS", 0) > 0 {
		purge := func(ctx context.Context) error {
			_, err := svc.Auth.PurgeExpired(ctx)
			return err
		}
		if err := scheduler.Add(ctx, "purge-expired-tokens", config.GetString(c, "TOKEN_PURGE_SCHEDULE", "@hourly"), purge); err != nil {
			fmt.Printf("Error scheduling token purge: %v\n", err)
			os.Exit(1)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, svc, c)
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
