package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

// ErrBadFixture is wrapped by LoadPropertiesFromFile when a record cannot be
// used as a listing.
var ErrBadFixture = errors.New("invalid property record")

// LoadPropertiesFromFile reads listings saved from the API for offline
// searches. Both a bare array and the {"data": [...]} envelope are accepted.
// Every record needs a positive, unique id and an address or city.
func LoadPropertiesFromFile(path string) ([]domain.Property, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read properties file: %w", err)
	}

	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(b, &env); err != nil {
			return nil, fmt.Errorf("unmarshal properties envelope: %w", err)
		}
		b = env.Data
	}

	var props []domain.Property
	if err := json.Unmarshal(b, &props); err != nil {
		return nil, fmt.Errorf("unmarshal properties: %w", err)
	}
	if err := checkFixtures(props); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return props, nil
}

func checkFixtures(props []domain.Property) error {
	seen := make(map[int64]int, len(props))
	for i, p := range props {
		if p.ID <= 0 {
			return fmt.Errorf("record %d: id %d: %w", i, p.ID, ErrBadFixture)
		}
		if j, dup := seen[p.ID]; dup {
			return fmt.Errorf("record %d: id %d already used by record %d: %w", i, p.ID, j, ErrBadFixture)
		}
		seen[p.ID] = i
		if strings.TrimSpace(p.Address) == "" && strings.TrimSpace(p.City) == "" {
			return fmt.Errorf("record %d: id %d has no address or city: %w", i, p.ID, ErrBadFixture)
		}
	}
	return nil
}
