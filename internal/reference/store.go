package reference

import (
	"log/slog"
	"sync"
)

// Store holds the reloadable reference data (platform list and roster) behind
// a read lock so in-flight batches keep a consistent view while an operator
// reloads the files.
type Store struct {
	mu     sync.RWMutex
	ships  *ShipIndex
	roster *Roster
	logger *slog.Logger

	shipPath    string
	rosterPath  string
	shipMin     float64
	identityMin float64
}

func NewStore(shipPath, rosterPath string, shipMin, identityMin float64, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:      logger,
		shipPath:    shipPath,
		rosterPath:  rosterPath,
		shipMin:     shipMin,
		identityMin: identityMin,
	}
}

// Reload reads both reference files from disk, replacing the in-memory view
// atomically. Either both files load or neither is swapped in.
func (s *Store) Reload() error {
	ships, err := LoadShipIndex(s.shipPath, s.shipMin)
	if err != nil {
		return err
	}
	roster, err := LoadRoster(s.rosterPath, s.identityMin)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ships = ships
	s.roster = roster
	s.mu.Unlock()

	s.logger.Info("reference data loaded",
		"ships", len(ships.Names()),
		"roster", len(roster.Entries()))
	return nil
}

// SetData swaps in reference data built elsewhere, e.g. loaded from the
// database instead of the seed files.
func (s *Store) SetData(ships *ShipIndex, roster *Roster) {
	s.mu.Lock()
	s.ships = ships
	s.roster = roster
	s.mu.Unlock()
}

// Ships returns the current platform index, or nil before the first Reload.
func (s *Store) Ships() *ShipIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ships
}

// Roster returns the current roster, or nil before the first Reload.
func (s *Store) Roster() *Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster
}
