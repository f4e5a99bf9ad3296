package service

import (
	"context"
	"fmt"
	"strings"

	"armar/internal/config"
	"armar/internal/database"

	"github.com/rs/zerolog"
)

const (
	backendRunning         = "running"
	connectionConnected    = "Connected"
	connectionNotConnected = "Not Connected"
	settingSet             = "set"
	settingNotSet          = "not set"

	maxDiagnosticsErrorLength = 50
)

// Diagnostics is the snapshot returned by the /test endpoint.
type Diagnostics struct {
	Backend           string   `json:"backend"`
	Database          string   `json:"database"`
	DatabaseError     string   `json:"database_error,omitempty"`
	ConnectedDatabase string   `json:"connected_database,omitempty"`
	ConnectionStatus  string   `json:"connection_status"`
	Collections       []string `json:"collections"`
	DatabaseURL       string   `json:"database_url"`
	DatabaseName      string   `json:"database_name"`
}

// DiagnosticsService reports backend and database liveness without ever failing.
type DiagnosticsService struct {
	store  database.Store
	cfg    config.DatabaseConfig
	logger *zerolog.Logger
}

func NewDiagnosticsService(store database.Store, cfg config.DatabaseConfig, logger *zerolog.Logger) *DiagnosticsService {
	return &DiagnosticsService{store: store, cfg: cfg, logger: logger}
}

func (s *DiagnosticsService) Snapshot(ctx context.Context) (d Diagnostics) {
	d = Diagnostics{
		Backend:          backendRunning,
		Database:         string(database.StateNotAvailable),
		ConnectionStatus: connectionNotConnected,
		Collections:      []string{},
		DatabaseURL:      presence(s.cfg.URL),
		DatabaseName:     presence(s.cfg.Name),
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("database status check panicked")
			d.Database = string(database.StateNotAvailable)
			d.ConnectionStatus = connectionNotConnected
			d.ConnectedDatabase = ""
			d.Collections = []string{}
			d.DatabaseError = truncate(fmt.Sprint(r), maxDiagnosticsErrorLength)
		}
	}()

	if s.store == nil {
		return d
	}

	status := s.store.Status(ctx)
	d.Database = string(status.State)
	if status.State == database.StateConnected || status.State == database.StateConnectedWithError {
		d.ConnectionStatus = connectionConnected
		d.ConnectedDatabase = status.Name
	}
	if status.Err != nil {
		d.DatabaseError = truncate(status.Err.Error(), maxDiagnosticsErrorLength)
	}
	if len(status.Collections) > 0 {
		d.Collections = status.Collections
	}
	if len(d.Collections) > database.MaxStatusCollections {
		d.Collections = d.Collections[:database.MaxStatusCollections]
	}
	return d
}

func presence(v string) string {
	if strings.TrimSpace(v) == "" {
		return settingNotSet
	}
	return settingSet
}
