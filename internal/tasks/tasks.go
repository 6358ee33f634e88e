// package tasks implements the concert pipeline: ingesting listings,
// syncing streaming libraries, computing matches, and sending digests.
//
// The core abstraction is Engine, which owns the repositories and outbound
// services and exposes one method per pipeline stage. Stages are idempotent
// so cron retries are safe.
package tasks

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

// Engine orchestrates the pipeline stages against storage and the outside
// world.
type Engine struct {
	cities   *repositories.CityRepository
	profiles *repositories.ProfileRepository
	artists  *repositories.ArtistRepository
	concerts *repositories.ConcertRepository
	matches  *repositories.MatchRepository

	scraper services.Scraper
	library services.Library
	mailer  services.Mailer

	config *shared.Config
	logger *log.Logger
	now    func() time.Time
}

// EngineOpts carries the dependencies for [NewEngine].
type EngineOpts struct {
	DB      Repositories
	Scraper services.Scraper
	Library services.Library
	Mailer  services.Mailer
	Config  *shared.Config
	Logger  *log.Logger
}

// Repositories bundles the storage layer handed to the engine.
type Repositories struct {
	Cities   *repositories.CityRepository
	Profiles *repositories.ProfileRepository
	Artists  *repositories.ArtistRepository
	Concerts *repositories.ConcertRepository
	Matches  *repositories.MatchRepository
}

// NewEngine creates an engine from its dependencies.
func NewEngine(opts EngineOpts) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Engine{
		cities:   opts.DB.Cities,
		profiles: opts.DB.Profiles,
		artists:  opts.DB.Artists,
		concerts: opts.DB.Concerts,
		matches:  opts.DB.Matches,
		scraper:  opts.Scraper,
		library:  opts.Library,
		mailer:   opts.Mailer,
		config:   opts.Config,
		logger:   logger,
		now:      time.Now,
	}
}

func (e *Engine) today() string {
	return shared.DateOnly(e.now())
}
