// Package terrain holds the terrain catalog and the defense-star ratings
// that feed the combat engine's terrain contribution.
package terrain

import (
	"sort"

	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
)

// Kind identifies a terrain tile kind.
type Kind string

const (
	KindPlains      Kind = "plains"
	KindWoods       Kind = "woods"
	KindMountain    Kind = "mountain"
	KindRoad        Kind = "road"
	KindRiver       Kind = "river"
	KindShoal       Kind = "shoal"
	KindSea         Kind = "sea"
	KindReef        Kind = "reef"
	KindCity        Kind = "city"
	KindBase        Kind = "base"
	KindAirport     Kind = "airport"
	KindPort        Kind = "port"
	KindComtower    Kind = "comtower"
	KindLab         Kind = "lab"
	KindHQ          Kind = "hq"
	KindMissileSilo Kind = "missile_silo"
)

// MaxStars is the highest defense-star rating in the catalog. Terrain-boost
// powers can double the effective value past this.
const MaxStars = 4

// Terrain is one catalog entry.
type Terrain struct {
	Kind  Kind
	Name  string
	Stars int
	// Building marks capturable structures. Owned comtowers are counted
	// from tiles with Kind == KindComtower.
	Building bool
}

var catalog = []Terrain{
	{KindPlains, "Plains", 1, false},
	{KindWoods, "Woods", 2, false},
	{KindMountain, "Mountain", 4, false},
	{KindRoad, "Road", 0, false},
	{KindRiver, "River", 0, false},
	{KindShoal, "Shoal", 0, false},
	{KindSea, "Sea", 0, false},
	{KindReef, "Reef", 1, false},
	{KindCity, "City", 3, true},
	{KindBase, "Base", 3, true},
	{KindAirport, "Airport", 3, true},
	{KindPort, "Port", 3, true},
	{KindComtower, "Comtower", 3, true},
	{KindLab, "Lab", 3, true},
	{KindHQ, "HQ", 4, true},
	{KindMissileSilo, "Missile Silo", 3, false},
}

var byKind = func() map[Kind]Terrain {
	kinds := make(map[Kind]Terrain, len(catalog))
	for _, t := range catalog {
		kinds[t.Kind] = t
	}
	return kinds
}()

// Get returns the catalog entry for a kind.
func Get(kind Kind) (Terrain, error) {
	t, ok := byKind[kind]
	if !ok {
		return Terrain{}, apperrors.WithMetadata(apperrors.CodeTerrainUnknown,
			"unknown terrain kind", map[string]string{"Kind": string(kind)})
	}
	return t, nil
}

// All returns the catalog ordered by kind id.
func All() []Terrain {
	all := make([]Terrain, 0, len(byKind))
	for _, t := range byKind {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Kind < all[j].Kind })
	return all
}

// Stars returns the defense-star rating for a kind.
func Stars(kind Kind) (int, error) {
	t, err := Get(kind)
	if err != nil {
		return 0, err
	}
	return t.Stars, nil
}
