package cart

import (
	"encoding/json"
	"fmt"
)

// persistedState is the on-disk envelope: {"state":{"items":[...]},"version":0}.
type persistedState struct {
	State   stateBody `json:"state"`
	Version int       `json:"version"`
}

type stateBody struct {
	Items []Item `json:"items"`
}

const stateVersion = 0

// Encode serializes the cart lines into the persisted envelope.
func Encode(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(persistedState{State: stateBody{Items: items}, Version: stateVersion})
}

// Decode parses a persisted envelope. Lines with a non-positive quantity
// are dropped since they can never be stored legitimately.
func Decode(data []byte) ([]Item, error) {
	var st persistedState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode cart state: %w", err)
	}
	if st.Version != stateVersion {
		return nil, fmt.Errorf("unsupported cart state version %d", st.Version)
	}
	items := make([]Item, 0, len(st.State.Items))
	for _, it := range st.State.Items {
		if it.Quantity <= 0 {
			continue
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}
