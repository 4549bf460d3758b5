package gameset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/justestif/go-hitster-cards/internal/cards"
)

// ErrNoCards is returned when the card database holds no cards for a SKU.
var ErrNoCards = errors.New("no cards found")

type database struct {
	Gamesets []struct {
		SKU         string `json:"sku"`
		GamesetData struct {
			Cards []cards.Entry `json:"cards"`
		} `json:"gameset_data"`
	} `json:"gamesets"`
}

// LoadCards reads a card database file and returns the entries of the first
// gameset with the given SKU.
func LoadCards(path, sku string) ([]cards.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading card database: %w", err)
	}

	var db database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parsing card database: %w", err)
	}

	for _, gs := range db.Gamesets {
		if gs.SKU != sku {
			continue
		}
		if len(gs.GamesetData.Cards) == 0 {
			break
		}
		return gs.GamesetData.Cards, nil
	}

	return nil, fmt.Errorf("%w for SKU %s", ErrNoCards, sku)
}
