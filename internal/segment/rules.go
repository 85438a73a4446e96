package segment

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// placeholder is the single substitution slot the response template must carry.
const placeholder = "{segment}"

// Rules is the immutable business-rules configuration: outlier thresholds,
// the cluster-index naming table, display labels, descriptions, and the
// response template. Construct via LoadRules or ParseRules; a Rules value
// that came through either is fully validated.
type Rules struct {
	MonetaryThreshold  float64
	FrequencyThreshold float64

	clusterNames map[int]Name
	display      map[Name]string
	descriptions map[Name]string
	template     string
}

// rulesFile is the on-disk JSON shape (business_rules.json).
type rulesFile struct {
	OutlierThresholds struct {
		Monetary  *float64 `json:"monetary"`
		Frequency *float64 `json:"frequency"`
	} `json:"outlier_thresholds"`
	ClusterMapping      map[string]string `json:"cluster_mapping"`
	DisplayMapping      map[string]string `json:"display_mapping"`
	ClusterDescriptions map[string]string `json:"cluster_descriptions"`
	ResponseTemplate    *string           `json:"response_template"`
}

// LoadRules reads and validates business rules from a JSON file.
// Any failure here is fatal configuration: serving must not start.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read business rules: %w", err)
	}
	r, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return r, nil
}

// ParseRules decodes and validates business rules from raw JSON.
func ParseRules(data []byte) (*Rules, error) {
	var f rulesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode business rules: %w", err)
	}

	if f.OutlierThresholds.Monetary == nil {
		return nil, &ConfigError{Key: "outlier_thresholds.monetary", Reason: "missing"}
	}
	if f.OutlierThresholds.Frequency == nil {
		return nil, &ConfigError{Key: "outlier_thresholds.frequency", Reason: "missing"}
	}
	r := &Rules{
		MonetaryThreshold:  *f.OutlierThresholds.Monetary,
		FrequencyThreshold: *f.OutlierThresholds.Frequency,
		clusterNames:       make(map[int]Name, len(f.ClusterMapping)),
		display:            make(map[Name]string, len(f.DisplayMapping)),
		descriptions:       make(map[Name]string, len(f.ClusterDescriptions)),
	}
	for _, th := range []struct {
		key string
		val float64
	}{
		{"outlier_thresholds.monetary", r.MonetaryThreshold},
		{"outlier_thresholds.frequency", r.FrequencyThreshold},
	} {
		if math.IsNaN(th.val) || math.IsInf(th.val, 0) || th.val < 0 {
			return nil, &ConfigError{Key: th.key, Reason: fmt.Sprintf("must be a non-negative finite number, got %v", th.val)}
		}
	}

	if len(f.ClusterMapping) == 0 {
		return nil, &ConfigError{Key: "cluster_mapping", Reason: "missing or empty"}
	}
	for k, v := range f.ClusterMapping {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 {
			return nil, &ConfigError{Key: "cluster_mapping", Reason: fmt.Sprintf("key %q is not a non-negative cluster index", k)}
		}
		name := Name(v)
		if !name.IsKnown() {
			return nil, &ConfigError{Key: "cluster_mapping", Reason: fmt.Sprintf("index %d maps to unknown segment %q", idx, v)}
		}
		r.clusterNames[idx] = name
	}

	for k, v := range f.DisplayMapping {
		name := Name(k)
		if !name.IsKnown() {
			return nil, &ConfigError{Key: "display_mapping", Reason: fmt.Sprintf("unknown segment %q", k)}
		}
		if strings.TrimSpace(v) == "" {
			return nil, &ConfigError{Key: "display_mapping", Reason: fmt.Sprintf("empty label for %q", k)}
		}
		r.display[name] = v
	}
	// Every segment reachable by rule or cluster index must have a label.
	for _, name := range r.reachable() {
		if _, ok := r.display[name]; !ok {
			return nil, &ConfigError{Key: "display_mapping", Reason: fmt.Sprintf("no label for reachable segment %q", name)}
		}
	}

	for k, v := range f.ClusterDescriptions {
		name := Name(k)
		if !name.IsKnown() {
			return nil, &ConfigError{Key: "cluster_descriptions", Reason: fmt.Sprintf("unknown segment %q", k)}
		}
		r.descriptions[name] = v
	}

	if f.ResponseTemplate == nil || strings.TrimSpace(*f.ResponseTemplate) == "" {
		return nil, &ConfigError{Key: "response_template", Reason: "missing"}
	}
	if n := strings.Count(*f.ResponseTemplate, placeholder); n != 1 {
		return nil, &ConfigError{Key: "response_template", Reason: fmt.Sprintf("must contain exactly one %s slot, found %d", placeholder, n)}
	}
	r.template = *f.ResponseTemplate

	return r, nil
}

// reachable returns every segment producible by the rule path or the
// configured cluster table, sorted for stable iteration.
func (r *Rules) reachable() []Name {
	seen := make(map[Name]bool, len(ruleSegments)+len(r.clusterNames))
	for _, n := range ruleSegments {
		seen[n] = true
	}
	for _, n := range r.clusterNames {
		seen[n] = true
	}
	out := make([]Name, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NameForIndex maps a clusterer index to its canonical segment.
func (r *Rules) NameForIndex(idx int) (Name, error) {
	name, ok := r.clusterNames[idx]
	if !ok {
		return "", &UnknownClusterError{Index: idx}
	}
	return name, nil
}

// DisplayFor returns the human-readable label for a canonical segment.
func (r *Rules) DisplayFor(name Name) (string, error) {
	label, ok := r.display[name]
	if !ok {
		return "", &ConfigError{Key: "display_mapping", Reason: fmt.Sprintf("no label for %q", name)}
	}
	return label, nil
}

// DescriptionFor returns the informational description for a segment,
// or "" when none is configured.
func (r *Rules) DescriptionFor(name Name) string {
	return r.descriptions[name]
}

// Render substitutes the display label into the response template.
func (r *Rules) Render(display string) string {
	return strings.Replace(r.template, placeholder, display, 1)
}

// ClusterCount returns how many cluster indices the rules can name.
func (r *Rules) ClusterCount() int {
	return len(r.clusterNames)
}

// HasIndex reports whether the rules name the given cluster index.
func (r *Rules) HasIndex(idx int) bool {
	_, ok := r.clusterNames[idx]
	return ok
}

// Segments returns the catalog of reachable segments with labels and
// descriptions, for the segments endpoint and the CLI.
func (r *Rules) Segments() []SegmentInfo {
	names := r.reachable()
	out := make([]SegmentInfo, 0, len(names))
	for _, n := range names {
		out = append(out, SegmentInfo{
			Segment:     n,
			Display:     r.display[n],
			Description: r.descriptions[n],
		})
	}
	return out
}

// SegmentInfo is one catalog entry.
type SegmentInfo struct {
	Segment     Name   `json:"segment"`
	Display     string `json:"display_name"`
	Description string `json:"description,omitempty"`
}
