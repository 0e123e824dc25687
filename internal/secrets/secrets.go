// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: gemini-api-key, anthropic-api-key (each optionally
// repeated as gemini-api-key-2, gemini-api-key-3, ... for rotation),
// ncbi-api-key, contact-email, redis-password.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/thesis-engine/internal/logging"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, log logrus.FieldLogger) (map[string]string, error) {
	log = logging.OrDiscard(log)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.WithError(err).WithField("secret", name).Warn("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Credentials returns the ordered credential list for base: the value of
// base itself, then base-2, base-3, ... in numeric order. Duplicate values
// are kept once, at their first position.
func Credentials(secrets map[string]string, base string) []string {
	type numbered struct {
		n     int
		value string
	}
	var found []numbered
	for name, value := range secrets {
		n, ok := credentialIndex(name, base)
		if !ok {
			continue
		}
		found = append(found, numbered{n: n, value: value})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	seen := make(map[string]bool)
	var out []string
	for _, f := range found {
		if seen[f.value] {
			continue
		}
		seen[f.value] = true
		out = append(out, f.value)
	}
	return out
}

// credentialIndex reports the rotation position of name under base. The
// bare base name is position 1.
func credentialIndex(name, base string) (int, bool) {
	if name == base {
		return 1, true
	}
	suffix, ok := strings.CutPrefix(name, base+"-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
