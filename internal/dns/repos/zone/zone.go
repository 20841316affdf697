// Package zone loads DNS zones from text. It reads RFC 1035 master files
// through the miekg/dns zone parser and the YAML, JSON and TOML zone format
// through koanf, producing validated domain.Zone values.
package zone

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/awesome-nfv/shuke/internal/dns/domain"
)

// DefaultTTL applies to records without an explicit TTL when neither the
// zone text nor the caller provides one.
const DefaultTTL uint32 = 3600

var masterExtensions = []string{".zone", ".db", ".txt"}

// Supported reports whether path has an extension LoadFile understands.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(masterExtensions, ext) || structuredParser(ext) != nil
}

// LoadFile loads a single zone file, choosing the format by extension.
func LoadFile(path string, defaultTTL uint32) (domain.Zone, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if parser := structuredParser(ext); parser != nil {
		return loadStructured(path, parser, defaultTTL)
	}
	if !slices.Contains(masterExtensions, ext) {
		return domain.Zone{}, fmt.Errorf("unsupported zone file type %q: %s", ext, path)
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("failed to read zone file: %w", err)
	}
	return Parse(string(text), ParseOptions{Source: path, DefaultTTL: defaultTTL})
}

// LoadDirectory walks dir and loads every supported zone file, returning the
// zones sorted by origin. Hidden files and unsupported extensions are skipped.
// Any failing file fails the whole load, as does an origin defined twice.
func LoadDirectory(dir string, defaultTTL uint32) ([]domain.Zone, error) {
	var zones []domain.Zone
	sources := make(map[string]string)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") || !Supported(path) {
			return nil
		}

		z, err := LoadFile(path, defaultTTL)
		if err != nil {
			return fmt.Errorf("error loading zone file %s: %w", path, err)
		}
		if prev, dup := sources[z.Origin()]; dup {
			return &domain.ValidationError{
				Zone:   z.Origin(),
				Reason: fmt.Sprintf("zone defined in both %s and %s", prev, path),
			}
		}
		sources[z.Origin()] = path
		zones = append(zones, z)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(zones, func(a, b domain.Zone) int { return strings.Compare(a.Origin(), b.Origin()) })
	return zones, nil
}
