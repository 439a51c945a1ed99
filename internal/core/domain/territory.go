package domain

import "strings"

// Territory is a utility brand grouping states (and optionally cities).
type Territory struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	States []string `json:"states,omitempty"`
	Cities []string `json:"cities,omitempty"`
	Color  string   `json:"color"`
}

// Territories is the shipped lookup table, in match order.
var Territories = []Territory{
	{Code: "PAC_GRID", Name: "Pacific Grid Authority", States: []string{"CA", "OR", "WA"}, Color: "#00bff0"},
	{Code: "SOUTHWEST_POWER", Name: "Southwest Power Alliance", States: []string{"AZ", "NV", "NM"}, Color: "#ff7a45"},
	{Code: "SUNBELT_ENERGY", Name: "Sunbelt Energy Cooperative", States: []string{"TX", "OK"}, Color: "#f5b739"},
	{Code: "ATLANTIC_GRID", Name: "Atlantic Grid Services", States: []string{"NY", "NJ", "MA", "CT", "PA", "MD"}, Color: "#7d6cfa"},
	{Code: "MIDWEST_UTIL", Name: "Midwest Utility Network", States: []string{"IL", "OH", "MI", "WI", "MN"}, Color: "#3cc88f"},
}

// DefaultTerritory is returned when nothing in the table matches.
var DefaultTerritory = Territory{Code: "INDEPENDENT", Name: "Independent Utility", Color: "#8a9fb2"}

// ResolveTerritory looks up state/city in Territories.
func ResolveTerritory(state, city string) Territory {
	return resolveIn(Territories, state, city)
}

// City overrides win over state matches; within each pass the first
// territory in table order wins.
func resolveIn(table []Territory, state, city string) Territory {
	state = strings.ToUpper(strings.TrimSpace(state))
	city = strings.ToUpper(strings.TrimSpace(city))

	if city != "" {
		for _, t := range table {
			if contains(t.Cities, city) {
				return t
			}
		}
	}
	if state != "" {
		for _, t := range table {
			if contains(t.States, state) {
				return t
			}
		}
	}
	return DefaultTerritory
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
