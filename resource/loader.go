package resource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader reads tile map documents from a directory and pre-compiles their
// passability maps.
type Loader struct {
	MapDir string

	Maps        map[int]*TileMap
	Passability map[int]*PassabilityMap
}

// NewLoader creates a Loader for the given map directory.
func NewLoader(mapDir string) *Loader {
	return &Loader{
		MapDir:      mapDir,
		Maps:        make(map[int]*TileMap),
		Passability: make(map[int]*PassabilityMap),
	}
}

// Load reads every *.json file in MapDir. A map that fails to parse or
// validate aborts the whole load; duplicate map IDs are an error.
func (l *Loader) Load() error {
	entries, err := os.ReadDir(l.MapDir)
	if err != nil {
		return fmt.Errorf("resource: read dir %s: %w", l.MapDir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		m, err := LoadMapFile(filepath.Join(l.MapDir, e.Name()))
		if err != nil {
			return err
		}
		if _, dup := l.Maps[m.ID]; dup {
			return fmt.Errorf("resource: duplicate map id %d in %s", m.ID, e.Name())
		}
		pm, err := Compile(m)
		if err != nil {
			return err
		}
		l.Maps[m.ID] = m
		l.Passability[m.ID] = pm
	}
	return nil
}

// LoadMapFile reads and validates a single tile map document.
func LoadMapFile(path string) (*TileMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resource: read %s: %w", path, err)
	}
	return ParseMap(data)
}

// ParseMap decodes and validates a tile map JSON document.
func ParseMap(data []byte) (*TileMap, error) {
	m := &TileMap{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("resource: parse map: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
