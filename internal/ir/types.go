package ir

// Property is one evaluated property: its final value after every
// property group that applies has been processed.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Item is one evaluated item. An Include list in the source produces one
// Item per entry.
type Item struct {
	Type     string            `json:"type"`
	Include  string            `json:"include"`
	Metadata map[string]string `json:"metadata,omitempty"`

	// SourceID is the correlation id of the source item element, or empty
	// when the document was evaluated without correlation.
	SourceID string `json:"source_id,omitempty"`

	// Condition is the expanded condition of the item and its group chain.
	Condition string `json:"condition,omitempty"`
}

// Target is one evaluated target.
type Target struct {
	Name             string `json:"name"`
	DependsOnTargets string `json:"depends_on_targets,omitempty"`
	Condition        string `json:"condition,omitempty"`
}

// Snapshot is the complete evaluated view produced by one engine load.
type Snapshot struct {
	Identity   string     `json:"identity"`
	Engine     string     `json:"engine"`
	Properties []Property `json:"properties"`
	Items      []Item     `json:"items"`
	Targets    []Target   `json:"targets"`
}

// Value converts the snapshot into a canonical Object.
func (s Snapshot) Value() Object {
	props := make(Array, len(s.Properties))
	for i, p := range s.Properties {
		props[i] = Object{"name": String(p.Name), "value": String(p.Value)}
	}
	items := make(Array, len(s.Items))
	for i, it := range s.Items {
		obj := Object{"type": String(it.Type), "include": String(it.Include)}
		if len(it.Metadata) > 0 {
			obj["metadata"] = StringMap(it.Metadata)
		}
		if it.SourceID != "" {
			obj["source_id"] = String(it.SourceID)
		}
		if it.Condition != "" {
			obj["condition"] = String(it.Condition)
		}
		items[i] = obj
	}
	targets := make(Array, len(s.Targets))
	for i, t := range s.Targets {
		obj := Object{"name": String(t.Name)}
		if t.DependsOnTargets != "" {
			obj["depends_on_targets"] = String(t.DependsOnTargets)
		}
		if t.Condition != "" {
			obj["condition"] = String(t.Condition)
		}
		targets[i] = obj
	}
	return Object{
		"identity":   String(s.Identity),
		"engine":     String(s.Engine),
		"properties": props,
		"items":      items,
		"targets":    targets,
	}
}

// Property returns the named property and whether it was defined.
func (s Snapshot) Property(name string) (string, bool) {
	for i := len(s.Properties) - 1; i >= 0; i-- {
		if s.Properties[i].Name == name {
			return s.Properties[i].Value, true
		}
	}
	return "", false
}

// ItemsOfType returns the items with the given type, in evaluation order.
func (s Snapshot) ItemsOfType(itemType string) []Item {
	var out []Item
	for _, it := range s.Items {
		if it.Type == itemType {
			out = append(out, it)
		}
	}
	return out
}
