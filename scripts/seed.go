package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/drugreco/drugreco/backend/internal/adapters/database"
	"github.com/drugreco/drugreco/backend/internal/adapters/search"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/postgres"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/typesense"
	"github.com/drugreco/drugreco/backend/pkg/config"
)

type seedDrug struct {
	name         string
	category     string
	strength     string
	manufacturer string
}

type seedSource struct {
	name        string
	sourceType  string
	baseURL     string
	credibility float64
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := pgClient.DB()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := db.ExecContext(ctx, `
			TRUNCATE TABLE
				validation_logs,
				drug_interactions,
				concept_mappings,
				clinical_alerts,
				update_sessions,
				data_sources,
				drugs
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	// 1. Seed Drugs
	drugs := []seedDrug{
		{"Startglim M2", "Diabetes", "Glimepiride 2 mg + Metformin 500 mg", "Mankind Pharma Ltd"},
		{"Dapa 10 mg", "Diabetes", "Dapagliflozin 10 mg", "Shrrishti Health Care Products Pvt Ltd"},
		{"Sacurise", "Diabetes", "Vildagliptin 50 mg + Metformin 500 mg", "Novartis India Ltd"},
		{"Dolo 650", "Pain Relief", "Paracetamol 650 mg", "Micro Labs Ltd"},
		{"Azithral 500", "Antibiotics", "Azithromycin 500 mg", "Alembic Pharmaceuticals Ltd"},
		{"Amlodac 5", "Hypertension", "Amlodipine 5 mg", "Cadila Healthcare Ltd"},
		{"Ecosprin 75", "Cardiovascular", "Aspirin 75 mg", "USV Pvt Ltd"},
		{"Warf 5", "Anticoagulant", "Warfarin Sodium 5 mg", "Cipla Ltd"},
		{"Lipvas 20", "Cholesterol", "Atorvastatin 20 mg", "Cipla Ltd"},
		{"Pantocid 40", "Gastrointestinal", "Pantoprazole 40 mg", "Sun Pharmaceutical Industries Ltd"},
	}

	for _, d := range drugs {
		_, err := db.ExecContext(ctx,
			`INSERT INTO drugs (id, name, category, strength, manufacturer, is_active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, true, NOW(), NOW())
			 ON CONFLICT (name) DO NOTHING`,
			uuid.New().String(), d.name, d.category, d.strength, d.manufacturer,
		)
		if err != nil {
			log.Printf("Failed to create drug %s: %v", d.name, err)
		}
	}

	// 2. Seed Data Sources
	sources := []seedSource{
		{"RxNav", "government_api", "https://rxnav.nlm.nih.gov/REST", 0.95},
		{"DrugBank", "commercial_database", "https://go.drugbank.com", 0.92},
		{"FDA MedWatch", "government_api", "https://www.fda.gov/safety/medwatch", 0.97},
	}

	var rxnavSourceID string
	for _, s := range sources {
		id := uuid.New().String()
		if s.name == "RxNav" {
			rxnavSourceID = id
		}
		_, err := db.ExecContext(ctx,
			`INSERT INTO data_sources (id, name, source_type, base_url, credibility_score, is_active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, true, NOW(), NOW())
			 ON CONFLICT (name) DO NOTHING`,
			id, s.name, s.sourceType, s.baseURL, s.credibility,
		)
		if err != nil {
			log.Printf("Failed to create data source %s: %v", s.name, err)
		}
	}

	// 3. Seed Clinical Alerts
	_, err = db.ExecContext(ctx,
		`INSERT INTO clinical_alerts
			(id, alert_type, severity, title, description, recommendation, affected_drugs, priority, source_id, is_active, effective_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true, $10, NOW(), NOW())
		 ON CONFLICT DO NOTHING`,
		uuid.New().String(),
		"interaction_warning",
		"critical",
		"Concurrent aspirin and warfarin therapy",
		"Combined antiplatelet and anticoagulant use substantially increases bleeding risk.",
		"Review necessity of dual therapy; monitor INR closely if unavoidable.",
		pq.Array([]string{"Ecosprin 75", "Warf 5"}),
		1,
		rxnavSourceID,
		time.Now(),
	)
	if err != nil {
		log.Printf("Failed to create clinical alert: %v", err)
	}

	// 4. Index seeded drugs for suggestions
	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Skipping suggestion index, Typesense unavailable: %v", err)
	} else {
		if err := tsClient.InitSchema(ctx); err != nil {
			log.Printf("Failed to init Typesense schema: %v", err)
		}

		drugRepo := database.NewDrugAdapter(pgClient)
		indexAdapter := search.NewDrugIndexAdapter(tsClient)

		active, err := drugRepo.ListActive(ctx)
		if err != nil {
			log.Printf("Failed to load drugs for indexing: %v", err)
		} else if err := indexAdapter.IndexBatch(ctx, active); err != nil {
			log.Printf("Failed to index drugs: %v", err)
		} else {
			log.Printf("Indexed %d drugs for suggestions", len(active))
		}
	}

	log.Println("Seeding completed successfully")
}
