// Package lookup holds the three flat reference tables the validator
// consults: corporate name to dispatch policy, city name to dispatch center,
// vehicle description to canonical vehicle name. Built-in defaults mirror
// the production sheets; each table can be replaced from a two-column CSV.
package lookup

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fleetdesk/booking-intake/constants"
)

// Corporate is a resolved corporate account.
type Corporate struct {
	Name   string
	Policy constants.DispatchPolicy
}

// Tables is the full lookup set. Read-only after construction; safe for
// concurrent use.
type Tables struct {
	corporates map[string]Corporate
	cities     map[string]string
	vehicles   map[string]string
	dispatch   map[string]string
	routes     map[[2]string]int
}

// Defaults returns the built-in tables.
func Defaults() *Tables {
	return &Tables{
		corporates: map[string]Corporate{
			"accenture":     {"Accenture India Ltd", constants.PolicyG2G},
			"tcs":           {"Tata Consultancy Services", constants.PolicyG2G},
			"infosys":       {"Infosys Limited", constants.PolicyG2G},
			"wipro":         {"Wipro Limited", constants.PolicyG2G},
			"hcl":           {"HCL Technologies", constants.PolicyG2G},
			"cognizant":     {"Cognizant Technology Solutions", constants.PolicyG2G},
			"tech mahindra": {"Tech Mahindra", constants.PolicyG2G},
			"capgemini":     {"Capgemini India", constants.PolicyG2G},
			"deloitte":      {"Deloitte India", constants.PolicyG2G},
			"pwc":           {"PwC India", constants.PolicyG2G},
			"microsoft":     {"Microsoft India", constants.PolicyG2G},
			"google":        {"Google India", constants.PolicyG2G},
			"amazon":        {"Amazon India", constants.PolicyG2G},
		},
		cities: map[string]string{
			"mumbai":    "Mumbai",
			"bombay":    "Mumbai",
			"delhi":     "Delhi",
			"new delhi": "Delhi",
			"ncr":       "Delhi",
			"bangalore": "Bangalore",
			"bengaluru": "Bangalore",
			"pune":      "Pune",
			"hyderabad": "Hyderabad",
			"chennai":   "Chennai",
			"madras":    "Chennai",
			"kolkata":   "Kolkata",
			"calcutta":  "Kolkata",
			"gurgaon":   "Gurgaon",
			"gurugram":  "Gurgaon",
			"noida":     "Noida",
		},
		vehicles: map[string]string{
			"dzire":         "Swift Dzire",
			"swift dzire":   "Swift Dzire",
			"maruti dzire":  "Swift Dzire",
			"sedan":         "Swift Dzire",
			"innova":        "Toyota Innova Crysta",
			"innova crysta": "Toyota Innova Crysta",
			"toyota innova": "Toyota Innova Crysta",
			"crysta":        "Toyota Innova Crysta",
			"suv":           "Toyota Innova Crysta",
			"ertiga":        "Maruti Ertiga",
			"maruti ertiga": "Maruti Ertiga",
			"swift":         "Maruti Swift",
			"maruti swift":  "Maruti Swift",
			"hatchback":     "Maruti Swift",
		},
		dispatch: map[string]string{
			"mumbai":    "Mumbai Central Dispatch",
			"delhi":     "Delhi NCR Dispatch",
			"gurgaon":   "Delhi NCR Dispatch",
			"noida":     "Delhi NCR Dispatch",
			"bangalore": "Bangalore Dispatch",
			"pune":      "Pune Dispatch",
			"hyderabad": "Hyderabad Dispatch",
			"chennai":   "Chennai Dispatch",
			"kolkata":   "Kolkata Dispatch",
		},
		routes: map[[2]string]int{
			{"mumbai", "pune"}:         150,
			{"pune", "mumbai"}:         150,
			{"delhi", "gurgaon"}:       50,
			{"gurgaon", "delhi"}:       50,
			{"delhi", "noida"}:         40,
			{"noida", "delhi"}:         40,
			{"mumbai", "nashik"}:       170,
			{"bangalore", "mysore"}:    150,
			{"chennai", "pondicherry"}: 160,
		},
	}
}

// FromPaths returns the default tables with any non-empty CSV path applied
// as an override.
func FromPaths(corporates, cities, vehicles, routes string) (*Tables, error) {
	t := Defaults()
	overrides := map[string]string{
		"corporates": corporates,
		"cities":     cities,
		"vehicles":   vehicles,
		"routes":     routes,
	}
	for table, path := range overrides {
		if path == "" {
			continue
		}
		if err := t.LoadCSV(table, path); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Corporate resolves raw content (a company name or a whole document) to a
// corporate account by case-insensitive substring match.
func (t *Tables) Corporate(raw string) (Corporate, bool) {
	s := strings.ToLower(raw)
	for key, corp := range t.corporates {
		if strings.Contains(s, key) {
			return corp, true
		}
	}
	return Corporate{}, false
}

// City canonicalizes a city mention.
func (t *Tables) City(raw string) (string, bool) {
	s := strings.ToLower(raw)
	for key, name := range t.cities {
		if strings.Contains(s, key) {
			return name, true
		}
	}
	return "", false
}

// Vehicle canonicalizes a free-text vehicle description. Longer keys win so
// "innova crysta" is not shadowed by "innova".
func (t *Tables) Vehicle(raw string) (string, bool) {
	s := strings.ToLower(raw)
	bestLen := 0
	var best string
	for key, name := range t.vehicles {
		if strings.Contains(s, key) && len(key) > bestLen {
			bestLen, best = len(key), name
		}
	}
	return best, bestLen > 0
}

// DispatchCenter resolves a city mention to its dispatch center.
func (t *Tables) DispatchCenter(raw string) (string, bool) {
	s := strings.ToLower(raw)
	for key, center := range t.dispatch {
		if strings.Contains(s, key) {
			return center, true
		}
	}
	return "", false
}

// RouteDistance estimates outstation kilometers for a from/to pair, falling
// back to the flat default when the route is unknown.
func (t *Tables) RouteDistance(from, to string) int {
	if d, ok := t.routes[[2]string{t.routeKey(from), t.routeKey(to)}]; ok {
		return d
	}
	return constants.DefaultOutstationKMS
}

// routeKey prefers the canonical city name so "Bombay to Pune" still hits
// the mumbai-pune route; unknown cities fall back to the raw token.
func (t *Tables) routeKey(raw string) string {
	if city, ok := t.City(raw); ok {
		return strings.ToLower(city)
	}
	return normKey(raw)
}

// LoadCSV replaces one table from a two-column CSV file. Which table is
// chosen by name: corporates, cities, vehicles, routes. Corporate rows may
// carry a third policy column (G2G/P2P, default G2G); route rows carry
// from,to,kms.
func (t *Tables) LoadCSV(table, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s csv: %w", table, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read %s csv: %w", table, err)
	}

	switch table {
	case "corporates":
		m := make(map[string]Corporate, len(rows))
		for _, row := range rows {
			if len(row) < 2 {
				continue
			}
			policy := constants.PolicyG2G
			if len(row) >= 3 && strings.EqualFold(strings.TrimSpace(row[2]), string(constants.PolicyP2P)) {
				policy = constants.PolicyP2P
			}
			m[normKey(row[0])] = Corporate{Name: strings.TrimSpace(row[1]), Policy: policy}
		}
		t.corporates = m
	case "cities":
		t.cities = twoColumn(rows)
	case "vehicles":
		t.vehicles = twoColumn(rows)
	case "routes":
		m := make(map[[2]string]int, len(rows))
		for _, row := range rows {
			if len(row) < 3 {
				continue
			}
			kms, err := strconv.Atoi(strings.TrimSpace(row[2]))
			if err != nil {
				continue
			}
			m[[2]string{normKey(row[0]), normKey(row[1])}] = kms
		}
		t.routes = m
	default:
		return fmt.Errorf("unknown lookup table %q", table)
	}
	return nil
}

func twoColumn(rows [][]string) map[string]string {
	m := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		m[normKey(row[0])] = strings.TrimSpace(row[1])
	}
	return m
}

func normKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
