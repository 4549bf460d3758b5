// Package gameset resolves country codes to Hitster gamesets and loads their cards.
package gameset

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrGamesetNotFound is returned when no gameset matches a country code.
var ErrGamesetNotFound = errors.New("gameset not found")

// Gameset describes one published edition of the game.
type Gameset struct {
	Name string `toml:"-"`
	SKU  string `toml:"sku"`
}

// Catalog maps gameset names (e.g. "Brazil") to their settings.
type Catalog map[string]Gameset

// codeMap translates short country codes to catalog keys.
var codeMap = map[string]string{
	"br": "Brazil",
	"us": "United States of America",
	"uk": "United Kingdom",
	"de": "Germany",
	"es": "Spain",
	"nl": "Netherlands",
	"fr": "France",
	"it": "Italy",
	"mx": "Mexico",
	"ca": "Canada",
	"pl": "Poland",
	"au": "Australia",
}

// LoadCatalog parses a TOML file with one table per gameset:
//
//	[Brazil]
//	sku = "aaaa0019"
func LoadCatalog(path string) (Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gamesets: %w", err)
	}
	defer file.Close()

	var c Catalog
	if err := toml.NewDecoder(file).Decode(&c); err != nil {
		return nil, fmt.Errorf("parse gamesets: %w", err)
	}
	return c, nil
}

// Resolve finds the gameset for a country code: exact key first, then the
// short-code map, then a case-insensitive key match.
func (c Catalog) Resolve(code string) (Gameset, error) {
	if gs, ok := c.lookup(code); ok {
		return gs, nil
	}
	if name, ok := codeMap[code]; ok {
		if gs, ok := c.lookup(name); ok {
			return gs, nil
		}
	}
	for _, name := range c.Names() {
		if strings.EqualFold(name, code) {
			gs, _ := c.lookup(name)
			return gs, nil
		}
	}
	return Gameset{}, fmt.Errorf("%w for country %q", ErrGamesetNotFound, code)
}

// Names returns the catalog keys in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c Catalog) lookup(name string) (Gameset, bool) {
	gs, ok := c[name]
	if !ok {
		return Gameset{}, false
	}
	gs.Name = name
	return gs, true
}
