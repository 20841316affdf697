package zone

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	"github.com/awesome-nfv/shuke/internal/dns/common/rrdata"
	"github.com/awesome-nfv/shuke/internal/dns/common/utils"
	"github.com/awesome-nfv/shuke/internal/dns/domain"
)

// Reserved top-level keys of the structured zone format. Every other key is
// an owner name relative to zone_root ("@" for the apex).
const (
	keyZoneRoot = "zone_root"
	keyTTL      = "ttl"
)

// structuredParser returns the koanf parser for a structured zone file
// extension, or nil when the extension is not a structured format.
func structuredParser(ext string) koanf.Parser {
	switch ext {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	case ".toml":
		return toml.Parser()
	default:
		return nil
	}
}

// loadStructured loads a YAML, JSON or TOML zone file of the form
//
//	zone_root: example.com
//	ttl: 300
//	"@":
//	  SOA: "ns1.example.com hostmaster.example.com 1 3600 600 86400 300"
//	  NS: ["ns1.example.com", "ns2.example.com"]
//	www:
//	  A: "192.0.2.10"
//
// Owners and types are emitted in sorted order with the apex first, so the
// resulting record order does not depend on map iteration.
func loadStructured(path string, parser koanf.Parser, defaultTTL uint32) (domain.Zone, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return domain.Zone{}, &domain.ParseError{Source: path, Reason: "failed to load zone file", Err: err}
	}

	root := utils.CanonicalDNSName(k.String(keyZoneRoot))
	if root == "" {
		return domain.Zone{}, &domain.ParseError{Source: path, Reason: "missing '" + keyZoneRoot + "'"}
	}

	ttl := cmp.Or(defaultTTL, DefaultTTL)
	if k.Exists(keyTTL) {
		v := k.Int64(keyTTL)
		if v < 0 || v > int64(^uint32(0)) {
			return domain.Zone{}, &domain.ParseError{Source: path, Reason: fmt.Sprintf("ttl out of range: %d", v)}
		}
		ttl = uint32(v)
	}

	raw := k.Raw()
	owners := make([]string, 0, len(raw))
	for name := range raw {
		if name != keyZoneRoot && name != keyTTL {
			owners = append(owners, name)
		}
	}
	slices.SortFunc(owners, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == "@":
			return -1
		case b == "@":
			return 1
		}
		return strings.Compare(a, b)
	})

	var records []domain.ResourceRecord
	for _, name := range owners {
		rawMap, ok := raw[name].(map[string]any)
		if !ok {
			return domain.Zone{}, &domain.ParseError{Source: path, Reason: fmt.Sprintf("owner %q must map record types to values", name)}
		}
		fqdn := expandName(name, root)
		types := make([]string, 0, len(rawMap))
		for rrType := range rawMap {
			types = append(types, rrType)
		}
		slices.Sort(types)
		for _, rrType := range types {
			values := toStringValues(rawMap[rrType])
			if len(values) == 0 {
				continue
			}
			recs, err := buildResourceRecords(fqdn, rrType, values, ttl)
			if err != nil {
				return domain.Zone{}, &domain.ParseError{Source: path, Reason: fmt.Sprintf("invalid %s record at %q", rrType, name), Err: err}
			}
			records = append(records, recs...)
		}
	}

	if !slices.ContainsFunc(records, func(rr domain.ResourceRecord) bool { return rr.Type() == domain.RRTypeSOA }) {
		return domain.Zone{}, &domain.ParseError{Source: path, Reason: "cannot build zone", Err: domain.ErrMissingSOA}
	}
	return domain.NewZone(root, records)
}

// expandName returns the canonical owner name for a label, expanding '@' to
// the root and treating names with a trailing dot as absolute.
func expandName(label, root string) string {
	if label == "@" {
		return root
	}
	if strings.HasSuffix(label, ".") {
		return utils.CanonicalDNSName(label)
	}
	return utils.CanonicalDNSName(label + "." + root)
}

// toStringValues converts a raw koanf-parsed value (string or []any of strings) into a slice of
// non-empty strings, skipping empty or non-string elements.
func toStringValues(val any) []string {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		return []string{s}
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			out = append(out, s)
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}

// buildResourceRecords creates one record per value for a given owner and type mnemonic.
func buildResourceRecords(fqdn string, rrType string, values []string, ttl uint32) ([]domain.ResourceRecord, error) {
	rType := domain.RRTypeFromString(rrType)
	if !rType.IsZoneData() {
		return nil, fmt.Errorf("unsupported record type %q", rrType)
	}
	records := make([]domain.ResourceRecord, 0, len(values))
	for _, s := range values {
		rr, err := rrdata.NewRecord(fqdn, rType, domain.RRClassIN, ttl, s)
		if err != nil {
			return nil, err
		}
		records = append(records, rr)
	}
	return records, nil
}
