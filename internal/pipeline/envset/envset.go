package envset

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/joho/godotenv"
)

var keyPattern = regexp.MustCompile(`^\s*(?:export\s+)?([A-Za-z_][A-Za-z0-9_.]*)\s*[=:]`)

// Set is an insertion ordered mapping of environment variables.
type Set struct {
	keys   []string
	values map[string]string
}

func New() *Set {
	return &Set{values: make(map[string]string)}
}

// Load parses a dotenv file, keeping keys in the order they first appear.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse reads dotenv content. Unquoted and double-quoted values expand
// ${KEY} from keys defined earlier in the same content, and unknown keys
// expand to nothing; single-quoted values are kept literally.
func Parse(data []byte) (*Set, error) {
	values, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, fmt.Errorf("invalid env file: %w", err)
	}

	set := New()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		m := keyPattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		if v, ok := values[m[1]]; ok {
			set.Set(m[1], v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan env file: %w", err)
	}

	// Keys the line scan could not place keep a stable order at the end.
	var rest []string
	for k := range values {
		if _, ok := set.values[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		set.Set(k, values[k])
	}

	return set, nil
}

// Set stores a value. Re-setting a key keeps its original position.
func (s *Set) Set(key, value string) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

func (s *Set) Get(key string) string {
	return s.values[key]
}

func (s *Set) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Set) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *Set) Len() int {
	return len(s.keys)
}

// Layered returns a lookup where the process environment wins over the set,
// mirroring a dotenv load that never overrides variables already exported.
func (s *Set) Layered(process func(string) (string, bool)) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if process != nil {
			if v, ok := process(key); ok {
				return v, true
			}
		}
		return s.Lookup(key)
	}
}
