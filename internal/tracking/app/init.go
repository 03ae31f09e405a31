// Package app implements the journey lifecycle, the location ingestion
// pipeline and the read side of live tracking. All authorization decisions
// happen here against an explicit caller identity; handlers only transport.
package app

import (
	"time"

	"tutor-track/internal/shared/models"
	"tutor-track/internal/shared/util"
	"tutor-track/internal/tracking/domain"
)

type TrackingService struct {
	journeys    domain.JourneyRepository
	history     domain.LocationHistory
	sessions    domain.SessionDirectory
	allocations domain.AllocationDirectory
	tracker     domain.TrackerCache
	pub         domain.EventPublisher
	logger      *util.Logger
	cfg         models.TrackingConfig

	mirrorQ chan domain.PositionRecord

	// now is swapped in tests to drive the idle sweep.
	now func() time.Time
}

func NewTrackingService(
	journeys domain.JourneyRepository,
	history domain.LocationHistory,
	sessions domain.SessionDirectory,
	allocations domain.AllocationDirectory,
	tracker domain.TrackerCache,
	pub domain.EventPublisher,
	cfg models.TrackingConfig,
	logger *util.Logger,
) *TrackingService {
	return &TrackingService{
		journeys:    journeys,
		history:     history,
		sessions:    sessions,
		allocations: allocations,
		tracker:     tracker,
		pub:         pub,
		logger:      logger,
		cfg:         cfg,
		mirrorQ:     make(chan domain.PositionRecord, cfg.MirrorBuffer),
		now:         time.Now,
	}
}
