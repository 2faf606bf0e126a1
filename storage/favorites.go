package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Favorite is a local alias for a spot number.
type Favorite struct {
	Alias string `json:"alias"`
	Spot  string `json:"spot"`
	Note  string `json:"note,omitempty"`
}

type FavoritesFile struct {
	Favorites []Favorite `json:"favorites"`
}

func LoadFavorites() ([]Favorite, error) {
	path, err := FavoritesPath()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Favorite{}, nil
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("favorites path is a directory: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var payload FavoritesFile
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return payload.Favorites, nil
}

// SaveFavorites writes the list sorted by alias.
func SaveFavorites(favorites []Favorite) error {
	if _, err := ensureConfigDir(); err != nil {
		return err
	}
	path, err := FavoritesPath()
	if err != nil {
		return err
	}

	sorted := make([]Favorite, len(favorites))
	copy(sorted, favorites)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Alias) < strings.ToLower(sorted[j].Alias)
	})

	data, err := json.MarshalIndent(FavoritesFile{Favorites: sorted}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// FindFavorite matches alias case-insensitively.
func FindFavorite(favorites []Favorite, alias string) (Favorite, bool) {
	needle := strings.TrimSpace(alias)
	for _, favorite := range favorites {
		if strings.EqualFold(favorite.Alias, needle) {
			return favorite, true
		}
	}
	return Favorite{}, false
}

// RemoveFavorite drops alias and reports whether it was present.
func RemoveFavorite(favorites []Favorite, alias string) ([]Favorite, bool) {
	for i, favorite := range favorites {
		if strings.EqualFold(favorite.Alias, strings.TrimSpace(alias)) {
			out := append([]Favorite{}, favorites[:i]...)
			return append(out, favorites[i+1:]...), true
		}
	}
	return favorites, false
}
