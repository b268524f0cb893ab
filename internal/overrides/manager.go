package overrides

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/fixture-survey/internal/store"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

// Manager applies operator edits to the persisted override state.
//
// Every action is one read-modify-write cycle of a single store key. Edits
// are serialized within one Manager; two processes editing the same store
// race and the last write wins.
type Manager struct {
	store  store.Store
	logger *zap.Logger

	mu sync.Mutex

	listenersMu sync.Mutex
	listeners   map[int]func()
	nextID      int
}

// NewManager creates a Manager over s.
func NewManager(s store.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:     s,
		logger:    logger,
		listeners: make(map[int]func()),
	}
}

// State loads the current override state.
func (m *Manager) State() (State, error) {
	return Load(m.store, m.logger)
}

// OnNotesChanged registers fn to run after every write of the notes
// document. The returned func removes the listener.
func (m *Manager) OnNotesChanged(fn func()) (unsubscribe func()) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.listenersMu.Lock()
		defer m.listenersMu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) notifyNotesChanged() {
	m.listenersMu.Lock()
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenersMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// =============================================================================
// EDIT ACTIONS
// =============================================================================

// RenameUnit changes the displayed unit of a row. Renaming a survey row to
// "" hides it from the report.
func (m *Manager) RenameUnit(ref, unit string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.additionalRows()
	if err != nil {
		return err
	}
	if i := findRow(rows, ref); i >= 0 {
		rows[i].Unit = unit
		return writeJSON(m.store, KeyAdditionalRows, rows)
	}

	units, err := readJSON(m.store, m.logger, KeyEditedUnits, newStringMap)
	if err != nil {
		return err
	}
	units[ref] = unit
	return writeJSON(m.store, KeyEditedUnits, units)
}

// EditInstallation sets the display text of a fixture slot.
//
// Added rows have no survey data behind them, so for the aerator and shower
// slots the text only switches the count between 1 (non-empty) and 0.
func (m *Manager) EditInstallation(ref string, f types.Fixture, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f != types.Toilet {
		rows, err := m.additionalRows()
		if err != nil {
			return err
		}
		if i := findRow(rows, ref); i >= 0 {
			count := 0
			if text != "" {
				count = 1
			}
			rows[i].SetCount(f, count)
			return writeJSON(m.store, KeyAdditionalRows, rows)
		}
	}

	edits, err := readJSON(m.store, m.logger, KeyEditedInstallations, newInstallationMap)
	if err != nil {
		return err
	}
	if edits[ref] == nil {
		edits[ref] = Installations{}
	}
	edits[ref][string(f)] = text
	return writeJSON(m.store, KeyEditedInstallations, edits)
}

// SetNote replaces the note of a row. An empty note restores the default.
func (m *Manager) SetNote(ref, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	notes, err := readJSON(m.store, m.logger, KeyUnifiedNotes, newStringMap)
	if err != nil {
		return err
	}
	notes[ref] = note
	if err := writeJSON(m.store, KeyUnifiedNotes, notes); err != nil {
		return err
	}

	m.notifyNotesChanged()
	return nil
}

// AddRow inserts a blank row at the top of the report and returns its ID.
func (m *Manager) AddRow() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.additionalRows()
	if err != nil {
		return "", err
	}

	row := types.ConsolidatedUnit{ID: uuid.NewString()}
	rows = append([]types.ConsolidatedUnit{row}, rows...)
	if err := writeJSON(m.store, KeyAdditionalRows, rows); err != nil {
		return "", err
	}
	return row.ID, nil
}

// DeleteRow removes an added row or hides a survey row, and drops the
// row's note.
func (m *Manager) DeleteRow(ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.additionalRows()
	if err != nil {
		return err
	}

	if i := findRow(rows, ref); i >= 0 {
		rows = slices.Delete(rows, i, i+1)
		if err := writeJSON(m.store, KeyAdditionalRows, rows); err != nil {
			return err
		}
	} else {
		units, err := readJSON(m.store, m.logger, KeyEditedUnits, newStringMap)
		if err != nil {
			return err
		}
		units[ref] = ""
		if err := writeJSON(m.store, KeyEditedUnits, units); err != nil {
			return err
		}
	}

	notes, err := readJSON(m.store, m.logger, KeyUnifiedNotes, newStringMap)
	if err != nil {
		return err
	}
	if _, ok := notes[ref]; !ok {
		return nil
	}
	delete(notes, ref)
	if err := writeJSON(m.store, KeyUnifiedNotes, notes); err != nil {
		return err
	}

	m.notifyNotesChanged()
	return nil
}

// SetColumnHeader renames a report column: unit, kitchen, bathroom, shower,
// toilet or notes.
func (m *Manager) SetColumnHeader(column, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	headers, err := readJSON(m.store, m.logger, KeyColumnHeaders, DefaultColumnHeaders)
	if err != nil {
		return err
	}
	if err := headers.Set(column, title); err != nil {
		return err
	}
	return writeJSON(m.store, KeyColumnHeaders, headers)
}

// SetSectionTitle renames the details section.
func (m *Manager) SetSectionTitle(title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	titles, err := readJSON(m.store, m.logger, KeySectionTitles, newSectionTitles)
	if err != nil {
		return err
	}
	titles.DetailsTitle = title
	return writeJSON(m.store, KeySectionTitles, titles)
}

// Reset removes every override document.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range Keys() {
		if err := m.store.Remove(key); err != nil {
			return fmt.Errorf("failed to reset overrides: %w", err)
		}
	}

	m.notifyNotesChanged()
	return nil
}

func (m *Manager) additionalRows() ([]types.ConsolidatedUnit, error) {
	return readJSON(m.store, m.logger, KeyAdditionalRows, newRows)
}

// findRow returns the index of the added row addressed by ref, or -1.
func findRow(rows []types.ConsolidatedUnit, ref string) int {
	return slices.IndexFunc(rows, func(u types.ConsolidatedUnit) bool {
		return RefOf(u) == ref
	})
}
