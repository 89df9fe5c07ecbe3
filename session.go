package whatif

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/etnz/whatif/date"
	"go.uber.org/zap"
)

// KV is the persistence port of a session: a flat string key-value store.
type KV interface {
	// Get returns the value of key, ok is false when the key is missing.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// DefaultNamespace prefixes every key of a session.
const DefaultNamespace = "mm.import.v1"

// storageVersion is the "v" field of every stored envelope.
const storageVersion = 1

// State is the user input of a session: everything else is derived from it.
type State struct {
	Transactions []Transaction `json:"items"`
	Scenario     Scenario      `json:"scenario"`
	AsOf         date.Date     `json:"asOf"`
}

// DefaultState is an empty list on the sp500 scenario valued today.
func DefaultState() State {
	return State{Scenario: SP500, AsOf: date.Today()}
}

// SessionStore loads and saves a State under a namespace of a KV.
//
// Three keys are used, <ns>.items, <ns>.scenario and <ns>.asOf, each holding a
// versioned JSON envelope.
type SessionStore struct {
	kv     KV
	ns     string
	logger *zap.Logger
}

// NewSessionStore returns a store on kv. An empty namespace means DefaultNamespace.
func NewSessionStore(kv KV, namespace string, logger *zap.Logger) *SessionStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{kv: kv, ns: namespace, logger: logger}
}

func (s *SessionStore) key(name string) string { return s.ns + "." + name }

type itemsEnvelope struct {
	V     int               `json:"v"`
	Items []json.RawMessage `json:"items"`
}

type valueEnvelope struct {
	V     int    `json:"v"`
	Value string `json:"value"`
}

// Load reads the state.
//
// Missing or corrupt data is replaced by its default: no transactions, the
// sp500 scenario, today. The error only reports a failing KV, the returned
// state is then the default one.
func (s *SessionStore) Load(ctx context.Context) (State, error) {
	st := DefaultState()

	raw, ok, err := s.kv.Get(ctx, s.key("items"))
	if err != nil {
		return st, fmt.Errorf("loading session items: %w", err)
	}
	if ok {
		var env itemsEnvelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil || env.V != storageVersion {
			s.logger.Warn("ignoring corrupt session items", zap.String("key", s.key("items")), zap.Error(err))
		} else {
			for _, item := range env.Items {
				var tx Transaction
				if err := json.Unmarshal(item, &tx); err != nil || tx.Date.IsZero() {
					s.logger.Warn("ignoring corrupt session item", zap.ByteString("item", item), zap.Error(err))
					continue
				}
				st.Transactions = append(st.Transactions, tx)
			}
		}
	}

	if v, ok, err := s.value(ctx, "scenario"); err != nil {
		return DefaultState(), err
	} else if ok {
		if sc, err := ParseScenario(v); err == nil {
			st.Scenario = sc
		}
	}

	if v, ok, err := s.value(ctx, "asOf"); err != nil {
		return DefaultState(), err
	} else if ok {
		if d, err := date.Parse(v); err == nil {
			st.AsOf = d
		}
	}
	return st, nil
}

// value reads a {"v":1,"value":...} envelope, a corrupt one is reported as missing.
func (s *SessionStore) value(ctx context.Context, name string) (string, bool, error) {
	raw, ok, err := s.kv.Get(ctx, s.key(name))
	if err != nil {
		return "", false, fmt.Errorf("loading session %s: %w", name, err)
	}
	if !ok {
		return "", false, nil
	}
	var env valueEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.V != storageVersion {
		s.logger.Warn("ignoring corrupt session value", zap.String("key", s.key(name)), zap.Error(err))
		return "", false, nil
	}
	return env.Value, true, nil
}

// Save writes the whole state.
func (s *SessionStore) Save(ctx context.Context, st State) error {
	items := make([]json.RawMessage, 0, len(st.Transactions))
	for _, tx := range st.Transactions {
		b, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("encoding transaction %v: %w", tx, err)
		}
		items = append(items, b)
	}
	writes := []struct {
		name string
		v    any
	}{
		{"items", itemsEnvelope{V: storageVersion, Items: items}},
		{"scenario", valueEnvelope{V: storageVersion, Value: string(st.Scenario)}},
		{"asOf", valueEnvelope{V: storageVersion, Value: st.AsOf.String()}},
	}
	for _, w := range writes {
		b, err := json.Marshal(w.v)
		if err != nil {
			return fmt.Errorf("encoding session %s: %w", w.name, err)
		}
		if err := s.kv.Set(ctx, s.key(w.name), string(b)); err != nil {
			return fmt.Errorf("saving session %s: %w", w.name, err)
		}
	}
	return nil
}

// Clear deletes every key of the namespace.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key("items"), s.key("scenario"), s.key("asOf")); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Session is a State bound to its store, every mutation is saved.
// Concurrent sessions on the same store are last write wins.
type Session struct {
	State
	store *SessionStore
}

// OpenSession loads the state from store.
func OpenSession(ctx context.Context, store *SessionStore) (*Session, error) {
	st, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{State: st, store: store}, nil
}

// AddManual validates e and appends it.
func (s *Session) AddManual(ctx context.Context, e ManualEntry) (Transaction, error) {
	tx, err := NewTransaction(e)
	if err != nil {
		return Transaction{}, err
	}
	s.Transactions = append(s.Transactions, tx)
	return tx, s.store.Save(ctx, s.State)
}

// Import appends the transactions read from a CSV.
func (s *Session) Import(ctx context.Context, r io.Reader) (ImportReport, error) {
	txs, report, err := ImportCSV(r)
	if err != nil {
		return report, err
	}
	s.Transactions = append(s.Transactions, txs...)
	return report, s.store.Save(ctx, s.State)
}

// Remove deletes the i-th transaction, zero based.
func (s *Session) Remove(ctx context.Context, i int) error {
	if i < 0 || i >= len(s.Transactions) {
		return fmt.Errorf("no transaction at index %d, the list has %d", i, len(s.Transactions))
	}
	s.Transactions = slices.Delete(s.Transactions, i, i+1)
	return s.store.Save(ctx, s.State)
}

// Clear resets the state and deletes it from the store.
func (s *Session) Clear(ctx context.Context) error {
	s.State = DefaultState()
	return s.store.Clear(ctx)
}

// SetScenario selects the scenario to value with and saves it. Unknown
// scenarios are rejected.
func (s *Session) SetScenario(ctx context.Context, sc Scenario) error {
	if _, err := ParseScenario(string(sc)); err != nil {
		return err
	}
	s.Scenario = sc
	return s.store.Save(ctx, s.State)
}

// SetAsOf sets the valuation date and saves it.
func (s *Session) SetAsOf(ctx context.Context, d date.Date) error {
	if d.IsZero() {
		return fmt.Errorf("%w: empty as-of date", ErrInvalidDate)
	}
	s.AsOf = d
	return s.store.Save(ctx, s.State)
}

// Compute values the session transactions.
func (s *Session) Compute(mult MultiplierFunc, growth float64) []ComputedRow {
	return Compute(s.Transactions, s.Scenario, s.AsOf, growth, mult)
}

// Timeline builds the cumulative series of the session.
func (s *Session) Timeline(mult MultiplierFunc, growth float64) Series {
	return Timeline(s.Transactions, s.Scenario, s.AsOf, growth, mult)
}
