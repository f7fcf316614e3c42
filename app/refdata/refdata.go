package refdata

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Store holds the reference data used by the inference engine: ordered lists
// of known group and system names, and the campaign alias map keyed by the
// lowercased source name. Loaded once at startup; immutable during a run.
type Store struct {
	Groups          []string
	Systems         []string
	CampaignAliases map[string]string
}

func Load(dataDir string) (*Store, error) {
	groups, err := readListFile(filepath.Join(dataDir, "groups.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}

	systems, err := readListFile(filepath.Join(dataDir, "systems.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to load systems: %w", err)
	}

	aliases, err := readAliasFile(filepath.Join(dataDir, "campaign_aliases.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign aliases: %w", err)
	}

	slog.Debug("Reference data loaded",
		"groups", len(groups),
		"systems", len(systems),
		"campaign_aliases", len(aliases))

	return &Store{
		Groups:          groups,
		Systems:         systems,
		CampaignAliases: aliases,
	}, nil
}

// readListFile reads one name per line, preserving file order.
// Blank lines and lines starting with # are ignored.
// A missing file yields an empty list, not an error.
func readListFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return names, nil
}

// readAliasFile reads "FROM => TO" mappings, one per line. The FROM side is
// lowercased for case-insensitive lookup. Lines without a => separator are
// skipped. A missing file yields an empty map, not an error.
func readAliasFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	aliases := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		left, right, found := strings.Cut(line, "=>")
		if !found {
			continue
		}

		from := strings.TrimSpace(left)
		to := strings.TrimSpace(right)
		if from != "" && to != "" {
			aliases[strings.ToLower(from)] = to
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return aliases, nil
}
