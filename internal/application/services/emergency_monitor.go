package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/domain/providers"
	"github.com/drugreco/drugreco/backend/internal/domain/repositories"
)

// EmergencyMonitor periodically scans for active critical safety alerts and
// publishes them on the event bus. It runs on its own ticker, fully
// decoupled from the update pipeline and its run guard.
type EmergencyMonitor struct {
	alertRepo repositories.ClinicalAlertRepository
	eventBus  providers.EventBus
	interval  time.Duration
	now       func() time.Time
}

// NewEmergencyMonitor creates a new emergency monitor. The event bus is
// optional; without it findings are only logged.
func NewEmergencyMonitor(alertRepo repositories.ClinicalAlertRepository, eventBus providers.EventBus, interval time.Duration) *EmergencyMonitor {
	return &EmergencyMonitor{
		alertRepo: alertRepo,
		eventBus:  eventBus,
		interval:  interval,
		now:       time.Now,
	}
}

// Start runs the monitoring loop until ctx is cancelled. One check runs
// immediately on startup.
func (m *EmergencyMonitor) Start(ctx context.Context) {
	log.Info().Dur("interval", m.interval).Msg("emergency alert monitor started")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CheckOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("emergency alert monitor stopped")
			return
		case <-ticker.C:
			m.CheckOnce(ctx)
		}
	}
}

// CheckOnce performs a single scan for active critical alerts.
func (m *EmergencyMonitor) CheckOnce(ctx context.Context) {
	alerts, err := m.alertRepo.ListActiveBySeverity(ctx, entities.SeverityCritical)
	if err != nil {
		log.Error().Err(err).Msg("emergency alert check failed")
		return
	}

	if len(alerts) == 0 {
		log.Debug().Msg("no active critical alerts")
		return
	}

	log.Warn().Int("count", len(alerts)).Msg("active critical safety alerts found")

	for _, alert := range alerts {
		log.Warn().
			Str("alert_id", alert.ID).
			Str("title", alert.Title).
			Strs("affected_drugs", alert.AffectedDrugs).
			Msg("critical safety alert active")

		m.publishAlert(ctx, alert)
	}
}

func (m *EmergencyMonitor) publishAlert(ctx context.Context, alert *entities.ClinicalAlert) {
	if m.eventBus == nil {
		return
	}

	event := &entities.ClinicalEvent{
		ID:        uuid.New().String(),
		EventType: entities.EventEmergencyAlert,
		Payload: map[string]interface{}{
			"alertId":       alert.ID,
			"alertType":     alert.AlertType,
			"title":         alert.Title,
			"severity":      string(alert.Severity),
			"affectedDrugs": alert.AffectedDrugs,
		},
		Timestamp: m.now(),
	}

	if err := m.eventBus.Publish(ctx, EventChannelClinical, event); err != nil {
		log.Warn().Str("alert_id", alert.ID).Err(err).Msg("failed to publish emergency alert event")
	}
}
