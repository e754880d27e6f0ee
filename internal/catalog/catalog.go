// Package catalog holds the hotel's reference data: the property
// description and the room inventory.  A default catalog is embedded at
// compile time; deployments may point CATALOG_FILE at their own YAML file
// with the same layout.
//
// The catalog is only a bootstrap source.  Once rooms are written to a
// store, the store is authoritative and Seed becomes a no-op.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

//go:embed rooms.yaml
var defaultCatalog []byte

// Hotel is the property information served by GET /v1/hotel.
type Hotel struct {
	Name         string   `yaml:"name" json:"name"`
	Address      string   `yaml:"address" json:"address"`
	CheckInTime  string   `yaml:"check_in_time" json:"check_in_time"`
	CheckOutTime string   `yaml:"check_out_time" json:"check_out_time"`
	Currency     string   `yaml:"currency" json:"currency"`
	Policies     []string `yaml:"policies" json:"policies"`
	Amenities    []string `yaml:"amenities" json:"amenities"`
}

// Catalog is a parsed catalog file.
type Catalog struct {
	Hotel Hotel
	Rooms []model.Room
}

type fileRoom struct {
	Number        string `yaml:"number"`
	Type          string `yaml:"type"`
	PricePerNight string `yaml:"price_per_night"`
	MaxOccupancy  int    `yaml:"max_occupancy"`
	Description   string `yaml:"description"`
	Amenities     string `yaml:"amenities"`
	// Unavailable takes a room out of service without removing it.
	Unavailable bool `yaml:"unavailable"`
}

type file struct {
	Hotel Hotel      `yaml:"hotel"`
	Rooms []fileRoom `yaml:"rooms"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	c, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return c, nil
}

// Load reads a catalog from path, or returns the embedded default when path
// is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes catalog YAML and validates every room.  Room numbers must
// be unique.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Rooms) == 0 {
		return nil, fmt.Errorf("catalog has no rooms")
	}
	seen := make(map[string]bool, len(f.Rooms))
	rooms := make([]model.Room, 0, len(f.Rooms))
	for i, fr := range f.Rooms {
		rt, err := model.ParseRoomType(fr.Type)
		if err != nil {
			return nil, fmt.Errorf("room #%d (%s): %w", i+1, fr.Number, err)
		}
		price, err := model.ParseMoney(fr.PricePerNight)
		if err != nil {
			return nil, fmt.Errorf("room #%d (%s): price: %w", i+1, fr.Number, err)
		}
		r := model.Room{
			Number:        strings.TrimSpace(fr.Number),
			Type:          rt,
			PricePerNight: price,
			MaxOccupancy:  fr.MaxOccupancy,
			Available:     !fr.Unavailable,
			Description:   fr.Description,
			Amenities:     fr.Amenities,
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if seen[r.Number] {
			return nil, fmt.Errorf("duplicate room number %s", r.Number)
		}
		seen[r.Number] = true
		rooms = append(rooms, r)
	}
	return &Catalog{Hotel: f.Hotel, Rooms: rooms}, nil
}

// Store is the subset of a room store needed for seeding.
type Store interface {
	CountRooms(ctx context.Context) (int, error)
	InsertRooms(ctx context.Context, rooms []model.Room) error
}

// Seed writes the catalog's rooms into store when it holds no rooms yet and
// reports how many rooms were inserted.
func Seed(ctx context.Context, store Store, c *Catalog) (int, error) {
	n, err := store.CountRooms(ctx)
	if err != nil {
		return 0, fmt.Errorf("count rooms: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	if err := store.InsertRooms(ctx, c.Rooms); err != nil {
		return 0, fmt.Errorf("insert rooms: %w", err)
	}
	return len(c.Rooms), nil
}
