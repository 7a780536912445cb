package extraction

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// OtherCategory is returned when no category keyword matches.
const OtherCategory = "Other"

// KeywordGroup maps a set of keywords to a label (a category or a card brand).
type KeywordGroup struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// VendorEntry is a known vendor: any text containing Match resolves to Name.
type VendorEntry struct {
	Match string `yaml:"match"`
	Name  string `yaml:"name"`
}

// Tables holds every keyword list the detectors consult. All lists are
// ordered and evaluated top to bottom. A Tables value is never mutated after
// it is loaded, so it can be shared between goroutines.
type Tables struct {
	Categories        []KeywordGroup `yaml:"categories"`
	Brands            []KeywordGroup `yaml:"brands"`
	Vendors           []VendorEntry  `yaml:"vendors"`
	VendorBoilerplate []string       `yaml:"vendor_boilerplate"`
	CardNoise         []string       `yaml:"card_noise"`
	CardContext       []string       `yaml:"card_context"`
	ItemExclusions    []string       `yaml:"item_exclusions"`
	TaxKeywords       []string       `yaml:"tax_keywords"`
}

var defaultTables = MustLoadTables(bytes.NewReader(defaultTablesYAML))

// DefaultTables returns the built-in keyword tables.
func DefaultTables() *Tables {
	return defaultTables
}

// LoadTables decodes and validates keyword tables from YAML.
func LoadTables(r io.Reader) (*Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding tables: %w", err)
	}
	t.normalize()
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadTablesFile reads keyword tables from a YAML file.
func LoadTablesFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tables file: %w", err)
	}
	defer f.Close()
	return LoadTables(f)
}

// MustLoadTables is like LoadTables but panics on error.
func MustLoadTables(r io.Reader) *Tables {
	t, err := LoadTables(r)
	if err != nil {
		panic(err)
	}
	return t
}

// CategoryNames returns the closed set of categories the classifier can
// produce, in table order, followed by OtherCategory.
func (t *Tables) CategoryNames() []string {
	names := make([]string, 0, len(t.Categories)+1)
	for _, c := range t.Categories {
		names = append(names, c.Name)
	}
	return append(names, OtherCategory)
}

// normalize lower-cases every keyword so matching only has to lower-case the
// text once.
func (t *Tables) normalize() {
	for i := range t.Categories {
		t.Categories[i].Keywords = lowerAll(t.Categories[i].Keywords)
	}
	for i := range t.Brands {
		t.Brands[i].Keywords = lowerAll(t.Brands[i].Keywords)
	}
	for i := range t.Vendors {
		t.Vendors[i].Match = strings.ToLower(strings.TrimSpace(t.Vendors[i].Match))
		t.Vendors[i].Name = strings.TrimSpace(t.Vendors[i].Name)
	}
	t.VendorBoilerplate = lowerAll(t.VendorBoilerplate)
	t.CardNoise = lowerAll(t.CardNoise)
	t.CardContext = lowerAll(t.CardContext)
	t.ItemExclusions = lowerAll(t.ItemExclusions)
	t.TaxKeywords = lowerAll(t.TaxKeywords)
}

func (t *Tables) validate() error {
	seen := make(map[string]bool)
	for i, c := range t.Categories {
		if c.Name == "" {
			return fmt.Errorf("category %d: name is required", i)
		}
		if strings.EqualFold(c.Name, OtherCategory) {
			return fmt.Errorf("category %d: %q is reserved", i, OtherCategory)
		}
		if seen[c.Name] {
			return fmt.Errorf("category %d: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true
		if len(c.Keywords) == 0 {
			return fmt.Errorf("category %q: at least one keyword is required", c.Name)
		}
	}
	for i, b := range t.Brands {
		if b.Name == "" || len(b.Keywords) == 0 {
			return fmt.Errorf("brand %d: name and keywords are required", i)
		}
	}
	for i, v := range t.Vendors {
		if v.Match == "" || v.Name == "" {
			return fmt.Errorf("vendor %d: match and name are required", i)
		}
	}
	if len(t.TaxKeywords) == 0 {
		return fmt.Errorf("tax_keywords: at least one keyword is required")
	}
	return nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsAny(lower string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
