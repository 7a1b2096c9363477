package sections

// Info describes one section for listings and the JSON API.
type Info struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Summary string   `json:"summary" yaml:"summary"`
	Kind    string   `json:"kind" yaml:"kind"`
	Parent  string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// Describe lists the catalogue in order. Aliases come from table when it is
// non-nil.
func Describe(table *AliasTable) []Info {
	all := All()
	out := make([]Info, 0, len(all))
	for _, s := range all {
		info := Info{
			ID:      s.String(),
			Title:   s.Title(),
			Summary: s.Summary(),
			Kind:    s.Kind().String(),
		}
		if parent, ok := s.Parent(); ok {
			info.Parent = parent.String()
		}
		if table != nil {
			info.Aliases = table.Aliases(s)
		}
		out = append(out, info)
	}
	return out
}
