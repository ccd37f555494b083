package comps

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Provider identifies a comparable-sales data source.
type Provider string

const (
	ProviderPropwire Provider = "propwire"
	ProviderATTOM    Provider = "attom"
)

// ParseProvider returns the provider named by s, case-insensitively.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderPropwire:
		return ProviderPropwire, true
	case ProviderATTOM:
		return ProviderATTOM, true
	}
	return "", false
}

// Schema describes where a provider keeps its candidates and their fields.
// Paths are dot-separated; numeric segments index into arrays.
// The first path that yields a usable value wins.
type Schema struct {
	Provider Provider
	Envelope string
	Sqft     []string
	LotSize  []string
	Price    []string
	Address  []string
	SaleDate []string
}

// DefaultSchemas returns the schemas of the built-in providers.
func DefaultSchemas() []Schema {
	return []Schema{
		{
			Provider: ProviderPropwire,
			Envelope: "results",
			Sqft:     []string{"sqft", "living_area", "building_size"},
			LotSize:  []string{"lot_size", "lot_sqft"},
			Price:    []string{"price", "sale_price", "last_sale_price"},
			Address:  []string{"address", "full_address"},
			SaleDate: []string{"sale_date", "sold_date", "last_sale_date"},
		},
		{
			Provider: ProviderATTOM,
			Envelope: "property",
			Sqft:     []string{"building.size.livingsize", "building.size.universalsize"},
			LotSize:  []string{"lot.lotsize2"},
			Price:    []string{"sale.amount.saleamt", "saleHistory.0.amount.saleamt"},
			Address:  []string{"address.oneLine"},
			SaleDate: []string{"sale.saleTransDate", "saleHistory.0.saleTransDate", "sale.amount.salerecdate"},
		},
	}
}

// Normalizer maps provider payloads onto Records.
type Normalizer struct {
	schemas map[Provider]Schema
}

// NewNormalizer creates a normalizer for the given schemas.
// With no arguments it knows the built-in providers.
func NewNormalizer(schemas ...Schema) *Normalizer {
	if len(schemas) == 0 {
		schemas = DefaultSchemas()
	}
	n := &Normalizer{schemas: make(map[Provider]Schema, len(schemas))}
	for _, s := range schemas {
		n.schemas[s.Provider] = s
	}
	return n
}

// Supports reports whether the normalizer has a schema for p.
func (n *Normalizer) Supports(p Provider) bool {
	_, ok := n.schemas[p]
	return ok
}

var defaultNormalizer = NewNormalizer()

// Normalize maps a raw payload from one of the built-in providers.
func Normalize(payload []byte, p Provider) []Record {
	return defaultNormalizer.Normalize(payload, p)
}

// Normalize locates the candidate array in payload and maps each object to a Record.
// It never fails: an unknown provider, malformed JSON or a missing envelope
// all produce an empty result.
func (n *Normalizer) Normalize(payload []byte, p Provider) []Record {
	schema, ok := n.schemas[p]
	if !ok || len(bytes.TrimSpace(payload)) == 0 {
		return []Record{}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return []Record{}
	}

	rawList, ok := envelope[schema.Envelope]
	if !ok {
		return []Record{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(rawList, &items); err != nil {
		return []Record{}
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		obj, ok := decodeObject(item)
		if !ok {
			continue
		}
		records = append(records, Record{
			Sqft:     lookupNumber(obj, schema.Sqft),
			LotSize:  lookupNumber(obj, schema.LotSize),
			Price:    lookupNumber(obj, schema.Price),
			Address:  lookupString(obj, schema.Address),
			SaleDate: lookupString(obj, schema.SaleDate),
			Fields:   obj,
		})
	}
	return records
}

// decodeObject decodes a JSON object, keeping numbers as json.Number.
func decodeObject(raw json.RawMessage) (map[string]any, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// lookupPath walks a dot-separated path through nested objects and arrays.
func lookupPath(obj map[string]any, path string) (any, bool) {
	var cur any = obj
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// lookupNumber tries each path and returns the first numeric value.
func lookupNumber(obj map[string]any, paths []string) *float64 {
	for _, path := range paths {
		v, ok := lookupPath(obj, path)
		if !ok {
			continue
		}
		if f, ok := toNumber(v); ok {
			return float64Ptr(f)
		}
	}
	return nil
}

// lookupString tries each path and returns the first non-empty string.
func lookupString(obj map[string]any, paths []string) string {
	for _, path := range paths {
		v, ok := lookupPath(obj, path)
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		case json.Number:
			return s.String()
		}
	}
	return ""
}

// toNumber converts JSON numbers and numeric strings such as "$1,250" to float64.
func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case string:
		s := strings.NewReplacer(",", "", "$", "", " ", "").Replace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
