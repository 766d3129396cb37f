package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/linesmerrill/court-compliance-api/holidays"
)

// jurisdictionsFile is the TOML layout of JURISDICTIONS_FILE:
//
//	[[jurisdiction]]
//	code = "CA-SUP"
//	name = "California Superior Court"
//	time_zone = "America/Los_Angeles"
//	filing_cutoff = "16:00"
//	closures = [{ date = "2025-03-31", name = "Cesar Chavez Day" }]
type jurisdictionsFile struct {
	Jurisdictions []holidays.JurisdictionConfig `toml:"jurisdiction"`
}

// LoadJurisdictions reads the jurisdictions registered in addition to the
// federal one. An empty path yields none.
func LoadJurisdictions(path string) ([]holidays.JurisdictionConfig, error) {
	if path == "" {
		return nil, nil
	}
	var file jurisdictionsFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to load jurisdictions from %s: %w", path, err)
	}
	return file.Jurisdictions, nil
}
