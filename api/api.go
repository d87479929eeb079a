// Package api is the composition root: it wires the store, the simulation
// runner and every domain service into a single façade consumed by demo
// front-ends and the CLI.
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"osprey-ehs/config"
	"osprey-ehs/core/dictionary"
	"osprey-ehs/core/incidents"
	"osprey-ehs/core/locations"
	"osprey-ehs/core/roles"
	"osprey-ehs/core/seed"
	"osprey-ehs/core/simulate"
	"osprey-ehs/core/store"
	"osprey-ehs/core/users"
	"osprey-ehs/core/utils"
)

// API bundles the services over one shared store and simulation runner.
type API struct {
	Store  *store.Store
	Runner *simulate.Runner

	Users      *users.Service
	Roles      *roles.Service
	Locations  *locations.Service
	Incidents  *incidents.Service
	Dictionary *dictionary.Service

	cfg config.SimulationConfig
	log *zap.SugaredLogger
}

// New builds the full service graph. A nil registry disables metrics; a nil
// logger falls back to the configured default.
func New(cfg config.SimulationConfig, log *zap.SugaredLogger, reg prometheus.Registerer) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = utils.NewLogger(cfg.Logging)
	}

	var metrics *simulate.Metrics
	if reg != nil {
		metrics = simulate.NewMetrics(reg)
	}

	st := store.New()
	run := simulate.NewRunner(cfg, log, metrics)

	return &API{
		Store:      st,
		Runner:     run,
		Users:      users.NewService(st, run, cfg, log),
		Roles:      roles.NewService(st, run, cfg, log),
		Locations:  locations.NewService(st, run, cfg, log),
		Incidents:  incidents.NewService(st, run, cfg, log),
		Dictionary: dictionary.NewService(st, run, cfg, log),
		cfg:        cfg,
		log:        log,
	}, nil
}

// Seed loads a bundle into the store. A no-op when already initialized.
func (a *API) Seed(bundle store.SeedBundle) {
	a.Store.Initialize(bundle)
	a.log.Infow("store seeded",
		"users", len(bundle.Users),
		"locations", len(bundle.Locations),
		"incidents", len(bundle.Incidents),
	)
}

// SeedDefault loads the built-in demo dataset.
func (a *API) SeedDefault() {
	a.Seed(seed.Default())
}

// SeedFile loads a YAML bundle from disk.
func (a *API) SeedFile(path string) error {
	bundle, err := seed.FromFile(path)
	if err != nil {
		return err
	}
	a.Seed(bundle)
	return nil
}

// Reset clears every collection and sequence counter.
func (a *API) Reset() {
	a.Store.Reset()
	a.log.Infow("store reset")
}

func (a *API) Initialized() bool {
	return a.Store.Initialized()
}

func (a *API) Config() config.SimulationConfig {
	return a.cfg
}
