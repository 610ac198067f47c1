package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drugreco/drugreco/backend/internal/adapters/database"
	"github.com/drugreco/drugreco/backend/internal/application/services"
	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/postgres"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/rxnav"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/observability"
	"github.com/drugreco/drugreco/backend/pkg/config"
)

func main() {
	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 30*time.Minute, "Maximum run duration")
	flag.Parse()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-sync", os.Getenv("APP_ENV"))

	// Setup DB
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pgClient.Close()

	// Setup repos
	drugRepo := database.NewDrugAdapter(pgClient)
	mappingRepo := database.NewConceptMappingAdapter(pgClient)
	interactionRepo := database.NewInteractionAdapter(pgClient)
	sourceRepo := database.NewDataSourceAdapter(pgClient)
	sessionRepo := database.NewUpdateSessionAdapter(pgClient)
	validationRepo := database.NewValidationLogAdapter(pgClient)

	// Setup upstream client and pipeline stages
	client := rxnav.NewClient(&cfg.RxNav)

	mappingService := services.NewConceptMappingService(drugRepo, mappingRepo, client, cfg.Clinical.MappingPace)
	syncService := services.NewInteractionSyncService(
		mappingRepo, interactionRepo, sourceRepo, client,
		cfg.Clinical.ConfidenceThreshold, cfg.Clinical.PairPace,
	)
	validationService := services.NewConsensusValidationService(interactionRepo, sourceRepo, validationRepo)

	svc := services.NewClinicalUpdateService(
		mappingService,
		syncService,
		validationService,
		nil,
		sessionRepo,
		interactionRepo,
		services.NewRunGuard(),
		nil,
		services.ScheduleDescription,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	start := time.Now()
	log.Println("Starting clinical data update...")

	session, err := svc.RunPipeline(ctx, entities.TriggerManual)
	if err != nil {
		log.Printf("Update failed: %v", err)
	}

	if session != nil {
		log.Printf("Update finished in %s", time.Since(start))
		log.Printf("Status: %s", session.Status)
		log.Printf("Records added: %d", session.RecordsAdded)
		log.Printf("Records updated: %d", session.RecordsUpdated)
		log.Printf("API calls: %d", session.TotalAPICalls)

		if len(session.SummaryReport) > 0 {
			var pretty map[string]interface{}
			if jsonErr := json.Unmarshal(session.SummaryReport, &pretty); jsonErr == nil {
				formatted, _ := json.MarshalIndent(pretty, "", "  ")
				log.Printf("Summary:\n%s", formatted)
			}
		}
	}

	if err != nil {
		os.Exit(1)
	}
}
