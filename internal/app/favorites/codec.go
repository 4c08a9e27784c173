package favorites

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mrops-br/restyle-storefront/internal/domain"
)

const stateVersion = 0

type storedState struct {
	Favorites []int `json:"favorites"`
	Version   int   `json:"version"`
}

// persistedStoreState is the layout written by the browser-side persisted
// store: {"state":{"favorites":[...]},"version":0}
type persistedStoreState struct {
	State *struct {
		Favorites []int `json:"favorites"`
	} `json:"state"`
}

func encodeSet(set domain.FavoriteSet) (string, error) {
	data, err := json.Marshal(storedState{Favorites: set.IDs(), Version: stateVersion})
	if err != nil {
		return "", fmt.Errorf("encode favorites: %w", err)
	}
	return string(data), nil
}

// decodeSet accepts a bare array, the {"favorites":[...]} wrapper and the
// persisted-store layout.
func decodeSet(raw string) (domain.FavoriteSet, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return domain.NewFavoriteSet(), nil
	}

	if data[0] == '[' {
		var ids []int
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
		return domain.NewFavoriteSet(ids...), nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	if _, ok := probe["state"]; ok {
		var ps persistedStoreState
		if err := json.Unmarshal(data, &ps); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
		if ps.State == nil {
			return domain.NewFavoriteSet(), nil
		}
		return domain.NewFavoriteSet(ps.State.Favorites...), nil
	}

	if _, ok := probe["favorites"]; !ok {
		return nil, fmt.Errorf("%w: no favorites field", ErrCorruptState)
	}
	var st storedState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return domain.NewFavoriteSet(st.Favorites...), nil
}
