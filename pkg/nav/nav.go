package nav

// Default icons used when a plugin does not declare its own.
const (
	DefaultEntryIcon   = "bi bi-box-seam fw"
	DefaultSectionIcon = "bi bi-collection fw"
	RemoteIcon         = "bi bi-globe fw"
	RemotesIcon        = "bi bi-list fw"
)

// Entry is a single navigation link.
type Entry struct {
	Label string `json:"label" mapstructure:"label" yaml:"label"`
	URL   string `json:"url" mapstructure:"url" yaml:"url"`
	Icon  string `json:"icon" mapstructure:"icon" yaml:"icon"`
}

// Section is a named, ordered group of entries.
// Entry order is render order.
type Section struct {
	Name    string  `json:"name"`
	Icon    string  `json:"icon"`
	Entries []Entry `json:"entries"`
}

// Empty reports whether the section has no entries.
func (s Section) Empty() bool {
	return len(s.Entries) == 0
}

// Remotes builds the static right-hand "Remotes" section.
// Entries with an empty icon get RemoteIcon.
func Remotes(entries ...Entry) Section {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Icon == "" {
			e.Icon = RemoteIcon
		}
		out = append(out, e)
	}
	return Section{Name: "Remotes", Icon: RemotesIcon, Entries: out}
}

// DefaultRemotes returns the remotes shipped with a fresh install.
func DefaultRemotes() []Entry {
	return []Entry{
		{Label: "local", URL: "?o=remote&r=local", Icon: RemoteIcon},
		{Label: "mgo", URL: "?o=remote&r=mgo", Icon: RemoteIcon},
	}
}
