package agent

import (
	"log/slog"
)

// FieldClass decides how a state field absorbs new observations.
type FieldClass int

const (
	// Numeric fields converge by exponential smoothing.
	Numeric FieldClass = iota
	// Categorical fields are replaced wholesale on every observation.
	Categorical
)

// defaultFieldSchema classifies state fields statically instead of probing
// value types at update time. Keys not listed are treated as Numeric.
var defaultFieldSchema = map[string]FieldClass{
	"topics": Categorical,
}

// StateStore holds the per-subreddit moving-average model. It lives for the
// process lifetime and is rebuilt from empty on restart; the agent is its
// single writer.
type StateStore struct {
	alpha  float64
	schema map[string]FieldClass
	states map[string]map[string]any
}

func NewStateStore(alpha float64) *StateStore {
	return &StateStore{
		alpha:  alpha,
		schema: defaultFieldSchema,
		states: make(map[string]map[string]any),
	}
}

// Update folds one observation set into the subreddit's model. The first
// observation for a subreddit is stored verbatim; afterwards numeric fields
// are smoothed as (1-alpha)*old + alpha*new with a missing or non-numeric old
// value counting as 0. Values that cannot be read as numbers overwrite the
// field verbatim rather than failing the update.
func (s *StateStore) Update(subreddit string, observations map[string]any) {
	state, ok := s.states[subreddit]
	if !ok {
		state = make(map[string]any, len(observations))
		for k, v := range observations {
			state[k] = v
		}
		s.states[subreddit] = state
		return
	}

	for key, value := range observations {
		if s.schema[key] == Categorical {
			state[key] = value
			continue
		}

		newValue, ok := asFloat(value)
		if !ok {
			slog.Warn("[StateStore] Could not smooth model field, overwriting",
				slog.String("subreddit", subreddit),
				slog.String("key", key))
			state[key] = value
			continue
		}

		oldValue, ok := asFloat(state[key])
		if !ok {
			oldValue = 0
		}

		state[key] = (1-s.alpha)*oldValue + s.alpha*newValue
	}
}

// Get returns a copy of the subreddit's model, empty when nothing has been
// observed.
func (s *StateStore) Get(subreddit string) map[string]any {
	state, ok := s.states[subreddit]
	if !ok {
		return map[string]any{}
	}

	out := make(map[string]any, len(state))
	for k, v := range state {
		out[k] = v
	}
	return out
}

// Snapshot copies every subreddit model, for summary logging.
func (s *StateStore) Snapshot() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.states))
	for sub := range s.states {
		out[sub] = s.Get(sub)
	}
	return out
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
