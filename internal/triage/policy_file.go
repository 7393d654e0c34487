package triage

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type policyFile struct {
	Policies map[string]Bounds `yaml:"policies"`
}

// ParsePolicies applies YAML overrides on top of the defaults. A policy named
// in the document has its bounds replaced wholesale; others keep defaults.
func ParsePolicies(data []byte) (PolicySet, error) {
	set := DefaultPolicies()
	if len(strings.TrimSpace(string(data))) == 0 {
		return set, nil
	}

	var doc policyFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return PolicySet{}, fmt.Errorf("triage: parse policy file: %w", err)
	}

	names := make([]string, 0, len(doc.Policies))
	for name := range doc.Policies {
		names = append(names, name)
	}
	sort.Strings(names)

	index := set.byName()
	for _, name := range names {
		target, ok := index[name]
		if !ok {
			return PolicySet{}, fmt.Errorf("triage: unknown policy %q", name)
		}
		bounds := doc.Policies[name]
		if bounds == (Bounds{}) {
			return PolicySet{}, fmt.Errorf("triage: policy %q has no bounds", name)
		}
		target.Bounds = bounds
	}
	return set, nil
}

// LoadPolicies reads overrides from path. An empty path or a missing file
// yields the defaults.
func LoadPolicies(path string) (PolicySet, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPolicies(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultPolicies(), nil
	}
	if err != nil {
		return PolicySet{}, fmt.Errorf("triage: read policy file: %w", err)
	}
	return ParsePolicies(data)
}
