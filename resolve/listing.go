package resolve

import (
	"encoding/json"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/forgecode/gomod-prefetch/domain"
)

// ParseMLines parses the line-oriented output of `go list -m` (or the
// equivalent lines recovered from vendor/modules.txt): two fields for a
// plain module, four for a local-path replace (kept as the old name with the
// path as its version), five for a module replace (collapsed to the new name
// and version). requested holds the set of module names the caller asked to
// replace; only five-field lines whose old name is in that set produce a
// ReplaceHint and a populated ModuleRecord.Replaces.
func ParseMLines(text string, requested map[string]bool) ([]domain.ModuleRecord, []domain.ReplaceHint) {
	var modules []domain.ModuleRecord
	var hints []domain.ReplaceHint

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)

		switch len(fields) {
		case 2:
			modules = append(modules, domain.ModuleRecord{
				Name: fields[0], Kind: domain.KindGoMod, Version: fields[1],
			})
		case 4:
			if fields[2] != "=>" {
				logger.Warnf("unexpected go module listing line: %q", line)
				continue
			}
			modules = append(modules, domain.ModuleRecord{
				Name: fields[0], Kind: domain.KindGoMod, Version: fields[3],
			})
		case 5:
			if fields[2] != "=>" {
				logger.Warnf("unexpected go module listing line: %q", line)
				continue
			}
			oldName, oldVersion := fields[0], fields[1]
			newName, newVersion := fields[3], fields[4]

			record := domain.ModuleRecord{Name: newName, Kind: domain.KindGoMod, Version: newVersion}
			if requested[oldName] {
				hints = append(hints, domain.ReplaceHint{OldName: oldName, OldVersion: oldVersion})
				record.Replaces = &domain.ReplaceRef{Name: oldName, Version: oldVersion}
			}
			modules = append(modules, record)
		default:
			logger.Warnf("unexpected go module listing line: %q", line)
		}
	}

	return modules, hints
}

type rawModuleRef struct {
	Path    string
	Version string
	Main    bool
	Replace *rawModuleRef
}

type rawListingEntry struct {
	ImportPath string
	Module     *rawModuleRef
	Deps       []string
	Standard   bool
}

// ParseDepsJSON decodes the concatenated-JSON-objects stream produced by
// `go list -deps -json ./...` (no enclosing array) into a lookup by import
// path.
func ParseDepsJSON(text string) (map[string]domain.ListingEntry, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	result := make(map[string]domain.ListingEntry)

	for dec.More() {
		var raw rawListingEntry
		if err := dec.Decode(&raw); err != nil {
			return nil, &domain.UnexpectedFormat{Reason: "could not parse `go list -deps -json` output: " + err.Error()}
		}

		entry := domain.ListingEntry{
			ImportPath: raw.ImportPath,
			Deps:       raw.Deps,
			Standard:   raw.Standard,
		}
		if raw.Module != nil {
			entry.Module = &domain.ModuleRef{
				Path: raw.Module.Path, Version: raw.Module.Version, Main: raw.Module.Main,
			}
			if raw.Module.Replace != nil {
				entry.Module.Replace = &domain.ReplaceModRef{
					Path: raw.Module.Replace.Path, Version: raw.Module.Replace.Version,
				}
			}
		}
		result[entry.ImportPath] = entry
	}

	return result, nil
}
