// Package ocean is the static catalog of currents a bubble can ride.
package ocean

import (
	"math"

	"bubblevoyage/internal/sim"
)

// GeoPoint is a position on the globe in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MarineLife is a creature met along a current.
type MarineLife struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Depth string `json:"depth"`
}

// Current is one rideable ocean current.
type Current struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	StartLocation string       `json:"startLocation"`
	EndLocation   string       `json:"endLocation"`
	Color         string       `json:"color"`
	AvgTempC      float64      `json:"avgTemp"`
	AvgSpeedMS    float64      `json:"avgSpeed"`
	Path          []GeoPoint   `json:"path"`
	Biodiversity  []MarineLife `json:"biodiversity"`
	Quizzes       []sim.Quiz   `json:"quizzes"`
}

// Default journey geometry shared by every current.
var (
	DefaultCheckpoints = []float64{35, 70}
	DefaultBiomes      = []float64{20, 50, 80}
)

// biomeSpan is how long, in progress points, a creature stays on screen after
// its biome threshold.
const biomeSpan = 10

// Route is the journey geometry for this current.
func (c Current) Route() sim.Route {
	return sim.Route{
		Checkpoints: DefaultCheckpoints,
		Biomes:      DefaultBiomes,
		Quizzes:     c.Quizzes,
	}
}

// ActiveLife returns the creature on screen at progress, if any.
func (c Current) ActiveLife(progress float64) (MarineLife, bool) {
	for i, b := range DefaultBiomes {
		if i >= len(c.Biodiversity) {
			break
		}
		if progress > b && progress < b+biomeSpan {
			return c.Biodiversity[i], true
		}
	}
	return MarineLife{}, false
}

// Depth is the bubble's simulated depth in metres: it sinks and resurfaces
// as the journey goes on.
func Depth(progress float64) float64 {
	return math.Max(0, math.Sin(progress*math.Pi)*2000+50)
}

// Temperature cools the current's average with depth.
func (c Current) Temperature(progress float64) float64 {
	return c.AvgTempC - Depth(progress)/500
}

// Brightness is the percentage of daylight reaching the bubble.
func Brightness(progress float64) float64 {
	return math.Max(0, 100-Depth(progress)/10)
}

// Position interpolates the bubble's location along the path.
func (c Current) Position(progress float64) GeoPoint {
	switch len(c.Path) {
	case 0:
		return GeoPoint{}
	case 1:
		return c.Path[0]
	}
	t := math.Min(math.Max(progress, 0), 100) / 100 * float64(len(c.Path)-1)
	i := int(t)
	if i >= len(c.Path)-1 {
		return c.Path[len(c.Path)-1]
	}
	f := t - float64(i)
	a, b := c.Path[i], c.Path[i+1]
	return GeoPoint{Lat: a.Lat + (b.Lat-a.Lat)*f, Lng: a.Lng + (b.Lng-a.Lng)*f}
}

// Catalog is the set of currents offered on the map.
type Catalog struct {
	currents []Current
}

// NewCatalog wraps currents in lookup order.
func NewCatalog(currents []Current) *Catalog {
	return &Catalog{currents: currents}
}

// DefaultCatalog returns the built-in currents.
func DefaultCatalog() *Catalog {
	return NewCatalog(builtinCurrents())
}

// All lists the currents.
func (c *Catalog) All() []Current {
	return c.currents
}

// Lookup finds a current by id.
func (c *Catalog) Lookup(id string) (Current, bool) {
	for _, cur := range c.currents {
		if cur.ID == id {
			return cur, true
		}
	}
	return Current{}, false
}
