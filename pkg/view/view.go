// Package view projects detail records into display models shared by the
// text and terminal renderers.
package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
)

// MaxBaseStat is the base value that fills a stat bar.
const MaxBaseStat = 255

// FallbackColor is used for an unknown or missing primary type.
const FallbackColor = "#f0f0f0"

var typeColors = map[string]string{
	"fire":     "#EE8130",
	"grass":    "#7AC74C",
	"water":    "#6390F0",
	"bug":      "#A6B91A",
	"normal":   "#A8A77A",
	"poison":   "#A33EA1",
	"electric": "#F7D02C",
	"ground":   "#E2BF65",
	"fairy":    "#D685AD",
	"fighting": "#C22E28",
	"psychic":  "#F95587",
	"rock":     "#B6A136",
	"ghost":    "#735797",
	"ice":      "#96D9D6",
	"dragon":   "#6F35FC",
	"steel":    "#B7B7CE",
	"dark":     "#705746",
	"flying":   "#A98FF3",
}

// Card is one entry of the aggregated list.
type Card struct {
	ID        int
	Title     string
	SpriteURL string
}

// StatBar is one base stat with its bar fill.
type StatBar struct {
	Label   string
	Value   int
	Percent float64
}

// Detail is the details panel for one record.
type Detail struct {
	Title     string
	SpriteURL string
	Color     string
	Types     []string
	Abilities []string
	Height    string
	Weight    string
	Stats     []StatBar
}

// NewCard builds the list card for p.
func NewCard(p pokeapi.Pokemon) Card {
	return Card{
		ID:        p.ID,
		Title:     CardTitle(p),
		SpriteURL: p.SpriteURL,
	}
}

// NewDetail builds the details panel for p.
func NewDetail(p pokeapi.Pokemon) Detail {
	stats := make([]StatBar, 0, len(p.Stats))
	for _, s := range p.Stats {
		stats = append(stats, StatBar{
			Label:   StatLabel(s.Name),
			Value:   s.BaseValue,
			Percent: StatBarPercent(s.BaseValue),
		})
	}

	return Detail{
		Title:     DetailTitle(p),
		SpriteURL: p.SpriteURL,
		Color:     TypeColor(p.PrimaryType()),
		Types:     p.Types,
		Abilities: p.Abilities,
		Height:    HeightMeters(p.Height) + " m",
		Weight:    WeightKilograms(p.Weight) + " kg",
		Stats:     stats,
	}
}

// CardTitle returns "#<id> - <NAME>".
func CardTitle(p pokeapi.Pokemon) string {
	return fmt.Sprintf("#%d - %s", p.ID, strings.ToUpper(p.Name))
}

// DetailTitle returns "<NAME> (#<id>)".
func DetailTitle(p pokeapi.Pokemon) string {
	return fmt.Sprintf("%s (#%d)", strings.ToUpper(p.Name), p.ID)
}

// HeightMeters converts decimetres to metres.
func HeightMeters(decimetres int) string {
	return formatTenths(decimetres)
}

// WeightKilograms converts hectograms to kilograms.
func WeightKilograms(hectograms int) string {
	return formatTenths(hectograms)
}

func formatTenths(v int) string {
	return strconv.FormatFloat(float64(v)/10, 'f', -1, 64)
}

// StatLabel replaces the first hyphen of a stat name with a space.
func StatLabel(name string) string {
	return strings.Replace(name, "-", " ", 1)
}

// StatBarPercent returns the bar fill for a base value, capped at 100.
func StatBarPercent(base int) float64 {
	return min(float64(base)/MaxBaseStat*100, 100)
}

// TypeColor returns the background colour for a primary type.
func TypeColor(typeName string) string {
	if c, ok := typeColors[typeName]; ok {
		return c
	}
	return FallbackColor
}

// TitleTypes title-cases each type and joins them with ", ".
func TitleTypes(types []string) string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		if t == "" {
			continue
		}
		out = append(out, strings.ToUpper(t[:1])+t[1:])
	}
	return strings.Join(out, ", ")
}
