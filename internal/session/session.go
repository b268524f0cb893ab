// =============================================================================
// Fixture Survey - Session
// =============================================================================
//
// A session is everything derived from one uploaded survey file:
//   - the decoded rows and the columns discovered in them
//   - the consolidated base units and the report toilet total
//   - the customer the report is written for
//
// LIFECYCLE:
//   created on upload -> persisted in the store -> loaded by every later
//   command -> torn down by Reset, which also drops all operator overrides.
//
// =============================================================================

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/fixture-survey/internal/discovery"
	"github.com/ginjaninja78/fixture-survey/internal/store"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

// Store keys of the session documents.
const (
	KeySession     = "session"
	KeyRawData     = "rawInstallationData"
	KeyBase        = "consolidatedData"
	KeyCustomer    = "customerInfo"
	KeyToiletCount = "toiletCount"
)

// ErrNoSession is returned when no survey file has been ingested yet.
var ErrNoSession = errors.New("no survey session; run ingest first")

// CustomerInfo identifies who the report is for.
type CustomerInfo struct {
	CustomerName string `json:"customerName" yaml:"customer_name"`
	PropertyName string `json:"propertyName" yaml:"property_name"`
	Address      string `json:"address" yaml:"address"`
	City         string `json:"city" yaml:"city"`
	State        string `json:"state" yaml:"state"`
	Zip          string `json:"zip" yaml:"zip"`
	Date         string `json:"date" yaml:"date"`
}

// Session is the state derived from one survey file.
type Session struct {
	ID         string    `json:"id"`
	SourceFile string    `json:"sourceFile"`
	Sheet      string    `json:"sheet,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`

	Headers      []string            `json:"headers"`
	UnitColumn   string              `json:"unitColumn"`
	NotesColumns []string            `json:"notesColumns,omitempty"`
	Roles        types.ColumnRoleMap `json:"roles"`
	Strategy     discovery.Strategy  `json:"strategy"`

	// Stored under their own keys.
	Customer    CustomerInfo             `json:"-"`
	Raw         []types.RawRow           `json:"-"`
	Base        []types.ConsolidatedUnit `json:"-"`
	ToiletCount int                      `json:"-"`
}

// New starts a session for a source file.
func New(sourceFile string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		SourceFile: sourceFile,
		CreatedAt:  time.Now().UTC(),
	}
}

type document struct {
	key   string
	value any
}

func (sess *Session) documents() []document {
	return []document{
		{KeyRawData, sess.Raw},
		{KeyBase, sess.Base},
		{KeyCustomer, sess.Customer},
		{KeyToiletCount, sess.ToiletCount},
		// Written last: its presence marks a complete session.
		{KeySession, sess},
	}
}

// Save writes every session document to s, keeping other keys.
func (sess *Session) Save(s store.Store) error {
	for _, doc := range sess.documents() {
		data, err := json.Marshal(doc.value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", doc.key, err)
		}
		if err := s.Set(doc.key, string(data)); err != nil {
			return fmt.Errorf("failed to save %s: %w", doc.key, err)
		}
	}
	return nil
}

// Replace makes sess the only content of s, together with extra keys.
// Every earlier edit is dropped. The swap is atomic: when it fails, the
// previous session and its edits are still in place.
func Replace(s store.Store, sess *Session, extra map[string]string) error {
	values := make(map[string]string, len(extra)+5)
	for _, doc := range sess.documents() {
		data, err := json.Marshal(doc.value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", doc.key, err)
		}
		values[doc.key] = string(data)
	}
	for key, value := range extra {
		values[key] = value
	}

	if err := s.Replace(values); err != nil {
		return fmt.Errorf("failed to replace session: %w", err)
	}
	return nil
}

// SaveCustomer replaces only the customer information.
func SaveCustomer(s store.Store, info CustomerInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", KeyCustomer, err)
	}
	if err := s.Set(KeyCustomer, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyCustomer, err)
	}
	return nil
}

// Load reads the current session. Returns ErrNoSession when none exists.
func Load(s store.Store) (*Session, error) {
	var sess Session

	found, err := read(s, KeySession, &sess)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSession
	}

	if _, err := read(s, KeyRawData, &sess.Raw); err != nil {
		return nil, err
	}
	if _, err := read(s, KeyBase, &sess.Base); err != nil {
		return nil, err
	}
	if _, err := read(s, KeyCustomer, &sess.Customer); err != nil {
		return nil, err
	}
	if _, err := read(s, KeyToiletCount, &sess.ToiletCount); err != nil {
		return nil, err
	}

	return &sess, nil
}

// Reset tears the session down together with every override.
func Reset(s store.Store) error {
	if err := s.Clear(); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	return nil
}

func read(s store.Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("corrupt %s: %w", key, err)
	}
	return true, nil
}
