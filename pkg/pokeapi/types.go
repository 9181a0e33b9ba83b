// Package pokeapi defines the PokeAPI resources used by the pokedex and the
// typed list and detail endpoints on top of the fetch client.
package pokeapi

// ListEntry references a detail record by name and URL. It is produced by one
// list-page response and discarded once expanded.
type ListEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListPage is one page of GET /pokemon?limit=&offset=.
// Next and Previous are empty when the API returns null.
type ListPage struct {
	Count    int         `json:"count"`
	Next     string      `json:"next"`
	Previous string      `json:"previous"`
	Results  []ListEntry `json:"results"`
}

// Stat is a single base stat.
type Stat struct {
	Name      string `json:"name"`
	BaseValue int    `json:"base_value"`
}

// Pokemon is the flattened detail record. Height is in decimetres and
// Weight in hectograms, as served by the API.
type Pokemon struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Height    int      `json:"height"`
	Weight    int      `json:"weight"`
	Types     []string `json:"types"`
	Abilities []string `json:"abilities"`
	Stats     []Stat   `json:"stats"`
	SpriteURL string   `json:"sprite_url"`
}

// PrimaryType returns the first listed type, or "" if none.
func (p Pokemon) PrimaryType() string {
	if len(p.Types) == 0 {
		return ""
	}
	return p.Types[0]
}

type namedRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// rawPokemon mirrors the nested JSON shape of GET /pokemon/{nameOrId}.
type rawPokemon struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`
	Types  []struct {
		Slot int      `json:"slot"`
		Type namedRef `json:"type"`
	} `json:"types"`
	Abilities []struct {
		Ability  namedRef `json:"ability"`
		IsHidden bool     `json:"is_hidden"`
		Slot     int      `json:"slot"`
	} `json:"abilities"`
	Stats []struct {
		BaseStat int      `json:"base_stat"`
		Effort   int      `json:"effort"`
		Stat     namedRef `json:"stat"`
	} `json:"stats"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
}

func (r rawPokemon) flatten() Pokemon {
	p := Pokemon{
		ID:        r.ID,
		Name:      r.Name,
		Height:    r.Height,
		Weight:    r.Weight,
		Types:     make([]string, 0, len(r.Types)),
		Abilities: make([]string, 0, len(r.Abilities)),
		Stats:     make([]Stat, 0, len(r.Stats)),
		SpriteURL: r.Sprites.FrontDefault,
	}
	for _, t := range r.Types {
		p.Types = append(p.Types, t.Type.Name)
	}
	for _, a := range r.Abilities {
		p.Abilities = append(p.Abilities, a.Ability.Name)
	}
	for _, s := range r.Stats {
		p.Stats = append(p.Stats, Stat{Name: s.Stat.Name, BaseValue: s.BaseStat})
	}
	return p
}
