package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

var (
	ErrNotFound     = errors.New("property not found")
	ErrNotConfirmed = errors.New("delete not confirmed")
)

// PropertyAPI is the part of the API facade the table writes through.
type PropertyAPI interface {
	ListProperties(ctx context.Context) ([]domain.Property, error)
	CreateProperty(ctx context.Context, in domain.PropertyInput) (domain.Property, error)
	UpdateProperty(ctx context.Context, id int64, in domain.PropertyInput) (domain.Property, error)
	SetVisibility(ctx context.Context, id int64, show bool) (domain.Property, error)
	DeleteProperty(ctx context.Context, id int64) error
}

// Table is the admin property list. Writes are applied locally first and
// rolled back when the API call fails.
type Table struct {
	api PropertyAPI
	log zerolog.Logger

	mu     sync.Mutex
	rows   []domain.Property
	tempID int64
}

func NewTable(api PropertyAPI, log zerolog.Logger) *Table {
	return &Table{api: api, log: log.With().Str("component", "admin_table").Logger()}
}

// Load replaces the rows with the API's current list.
func (t *Table) Load(ctx context.Context) error {
	props, err := t.api.ListProperties(ctx)
	if err != nil {
		return fmt.Errorf("load properties: %w", err)
	}
	t.mu.Lock()
	t.rows = append([]domain.Property(nil), props...)
	t.mu.Unlock()
	return nil
}

func (t *Table) Rows() []domain.Property {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Property(nil), t.rows...)
}

func (t *Table) Get(id int64) (domain.Property, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.index(id); i >= 0 {
		return t.rows[i], true
	}
	return domain.Property{}, false
}

// Search matches term against address and city, case-insensitively. An empty
// term returns every row.
func (t *Table) Search(term string) []domain.Property {
	rows := t.Rows()
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows
	}
	out := make([]domain.Property, 0, len(rows))
	for _, p := range rows {
		if strings.Contains(strings.ToLower(p.Address), term) || strings.Contains(strings.ToLower(p.City), term) {
			out = append(out, p)
		}
	}
	return out
}

// EmptyMessage is shown when Search returns nothing.
func EmptyMessage(term string) string {
	if term = strings.TrimSpace(term); term == "" {
		return "No properties yet"
	}
	return fmt.Sprintf("No matching properties found for %q", term)
}

// Add inserts a placeholder row, creates the property, then swaps in the
// stored record. The placeholder is removed if creation fails.
func (t *Table) Add(ctx context.Context, in domain.PropertyInput) (domain.Property, error) {
	in.Images = MergeImages(in.Images)

	t.mu.Lock()
	t.tempID--
	temp := in.Apply(domain.Property{ID: t.tempID})
	t.rows = append([]domain.Property{temp}, t.rows...)
	t.mu.Unlock()

	saved, err := t.api.CreateProperty(ctx, in)

	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.index(temp.ID)
	if err != nil {
		if i >= 0 {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
		}
		t.log.Warn().Err(err).Msg("create rolled back")
		return domain.Property{}, fmt.Errorf("create property: %w", err)
	}
	if i >= 0 {
		t.rows[i] = saved
	} else {
		t.rows = append([]domain.Property{saved}, t.rows...)
	}
	t.log.Info().Int64("id", saved.ID).Msg("property created")
	return saved, nil
}

// Update applies in to row id and restores the previous row on failure.
func (t *Table) Update(ctx context.Context, id int64, in domain.PropertyInput) (domain.Property, error) {
	in.Images = MergeImages(in.Images)

	t.mu.Lock()
	i := t.index(id)
	if i < 0 {
		t.mu.Unlock()
		return domain.Property{}, ErrNotFound
	}
	prev := t.rows[i]
	t.rows[i] = in.Apply(prev)
	t.mu.Unlock()

	saved, err := t.api.UpdateProperty(ctx, id, in)
	if err != nil {
		t.restore(prev)
		t.log.Warn().Err(err).Int64("id", id).Msg("update rolled back")
		return domain.Property{}, fmt.Errorf("update property %d: %w", id, err)
	}
	return t.commit(id, saved), nil
}

// ToggleVisibility flips the show flag.
func (t *Table) ToggleVisibility(ctx context.Context, id int64) (domain.Property, error) {
	t.mu.Lock()
	i := t.index(id)
	if i < 0 {
		t.mu.Unlock()
		return domain.Property{}, ErrNotFound
	}
	prev := t.rows[i]
	t.rows[i].Show = !prev.Show
	show := t.rows[i].Show
	t.mu.Unlock()

	saved, err := t.api.SetVisibility(ctx, id, show)
	if err != nil {
		t.restore(prev)
		t.log.Warn().Err(err).Int64("id", id).Msg("visibility toggle rolled back")
		return domain.Property{}, fmt.Errorf("set visibility %d: %w", id, err)
	}
	return t.commit(id, saved), nil
}

// Delete removes row id. It refuses to run without confirmation and puts the
// row back at its position when the API call fails.
func (t *Table) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}

	t.mu.Lock()
	i := t.index(id)
	if i < 0 {
		t.mu.Unlock()
		return ErrNotFound
	}
	prev := t.rows[i]
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	t.mu.Unlock()

	if err := t.api.DeleteProperty(ctx, id); err != nil {
		t.mu.Lock()
		if i > len(t.rows) {
			i = len(t.rows)
		}
		t.rows = append(t.rows[:i], append([]domain.Property{prev}, t.rows[i:]...)...)
		t.mu.Unlock()
		t.log.Warn().Err(err).Int64("id", id).Msg("delete rolled back")
		return fmt.Errorf("delete property %d: %w", id, err)
	}
	t.log.Info().Int64("id", id).Msg("property deleted")
	return nil
}

// commit stores the server's copy when it returned one.
func (t *Table) commit(id int64, saved domain.Property) domain.Property {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.index(id)
	if i < 0 {
		return saved
	}
	if saved.ID != 0 {
		t.rows[i] = saved
	}
	return t.rows[i]
}

func (t *Table) restore(prev domain.Property) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.index(prev.ID); i >= 0 {
		t.rows[i] = prev
	}
}

func (t *Table) index(id int64) int {
	for i := range t.rows {
		if t.rows[i].ID == id {
			return i
		}
	}
	return -1
}
