package lectionary

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Psalms holds the psalm references of a day. A table may give one reference
// (or list) for every order, or key the references by order of service:
//
//	psalm: Psalm 24
//	psalm: [Psalm 2, Psalm 19]
//	psalm: {matins: Psalm 24, vespers: [Psalm 25, Psalm 26]}
//
// The key "default" in the keyed form applies to orders without their own slot.
type Psalms struct {
	Default []string
	ByOrder map[Order][]string
}

const defaultPsalmKey = "default"

// For returns the references for an order, falling back to the default slot.
func (p Psalms) For(order Order) []string {
	if refs, ok := p.ByOrder[order]; ok {
		return refs
	}
	return p.Default
}

// Clone returns a copy that shares no slices or maps with p.
func (p Psalms) Clone() Psalms {
	out := Psalms{Default: slices.Clone(p.Default)}
	if p.ByOrder != nil {
		out.ByOrder = make(map[Order][]string, len(p.ByOrder))
		for order, refs := range p.ByOrder {
			out.ByOrder[order] = slices.Clone(refs)
		}
	}
	return out
}

// IsZero reports whether no psalm is appointed at all.
func (p Psalms) IsZero() bool {
	return len(p.Default) == 0 && len(p.ByOrder) == 0
}

// UnmarshalYAML accepts a scalar, a sequence or an order-keyed mapping.
func (p *Psalms) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode, yaml.SequenceNode:
		refs, err := decodeRefs(node)
		if err != nil {
			return err
		}
		p.Default = refs
		return nil

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			refs, err := decodeRefs(node.Content[i+1])
			if err != nil {
				return err
			}
			if key == defaultPsalmKey {
				p.Default = refs
				continue
			}
			// Unknown orders are kept so that Validate can report them.
			if p.ByOrder == nil {
				p.ByOrder = make(map[Order][]string)
			}
			p.ByOrder[Order(key)] = refs
		}
		return nil
	}

	return fmt.Errorf("line %d: psalm must be a reference, a list or a map keyed by order", node.Line)
}

func decodeRefs(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return nil, nil
		}
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		var refs []string
		if err := node.Decode(&refs); err != nil {
			return nil, err
		}
		return refs, nil
	}
	return nil, fmt.Errorf("line %d: psalm reference must be a string or a list of strings", node.Line)
}

// MarshalJSON writes the keyed form: {"default": [...], "matins": [...]}.
func (p Psalms) MarshalJSON() ([]byte, error) {
	out := make(map[string][]string, len(p.ByOrder)+1)
	if len(p.Default) > 0 {
		out[defaultPsalmKey] = p.Default
	}
	for order, refs := range p.ByOrder {
		out[string(order)] = refs
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the keyed form written by MarshalJSON.
func (p *Psalms) UnmarshalJSON(data []byte) error {
	var in map[string][]string
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Psalms{}
	for key, refs := range in {
		if key == defaultPsalmKey {
			p.Default = refs
			continue
		}
		if p.ByOrder == nil {
			p.ByOrder = make(map[Order][]string)
		}
		p.ByOrder[Order(key)] = refs
	}
	return nil
}

// orderKeys returns the order keys in sorted order, for stable error output.
func (p Psalms) orderKeys() []Order {
	keys := make([]Order, 0, len(p.ByOrder))
	for k := range p.ByOrder {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// UnmarshalYAML accepts either a bare hymn number (in the default hymnal) or a
// {hymnal, index} mapping.
func (h *HymnRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		n, err := strconv.Atoi(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: hymn must be a number or {hymnal, index}", node.Line)
		}
		*h = HymnRef{Hymnal: DefaultHymnal, Index: n}
		return nil
	}

	type plain HymnRef
	var v plain
	if err := node.Decode(&v); err != nil {
		return err
	}
	if v.Hymnal == "" {
		v.Hymnal = DefaultHymnal
	}
	*h = HymnRef(v)
	return nil
}
