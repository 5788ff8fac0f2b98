package nfo

// Actor is a cast entry read from an <actor> element.
type Actor struct {
	Name  string `json:"name"            yaml:"name"`
	Role  string `json:"role,omitempty"  yaml:"role,omitempty"`
	Thumb string `json:"thumb,omitempty" yaml:"thumb,omitempty"`
	Order *int   `json:"order,omitempty" yaml:"order,omitempty"`
}

// UniqueID is an external or source identifier such as <uniqueid type="imdb">.
type UniqueID struct {
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Value   string `json:"value"          yaml:"value"`
	Default bool   `json:"default"        yaml:"default"`
}

// Metadata is the parsed content of one sidecar file. Optional values that
// are missing or unparsable stay nil/empty.
type Metadata struct {
	Title         string `json:"title,omitempty"          yaml:"title,omitempty"`
	OriginalTitle string `json:"original_title,omitempty" yaml:"original_title,omitempty"`
	SortTitle     string `json:"sort_title,omitempty"     yaml:"sort_title,omitempty"`
	Tagline       string `json:"tagline,omitempty"        yaml:"tagline,omitempty"`
	Plot          string `json:"plot,omitempty"           yaml:"plot,omitempty"`
	Outline       string `json:"outline,omitempty"        yaml:"outline,omitempty"`

	Rating     *float64 `json:"rating,omitempty"      yaml:"rating,omitempty"`
	UserRating *float64 `json:"user_rating,omitempty" yaml:"user_rating,omitempty"`
	Votes      *int     `json:"votes,omitempty"       yaml:"votes,omitempty"`
	Year       *int     `json:"year,omitempty"        yaml:"year,omitempty"`
	Runtime    *int     `json:"runtime,omitempty"     yaml:"runtime,omitempty"` // minutes

	Premiered string `json:"premiered,omitempty" yaml:"premiered,omitempty"`
	Released  string `json:"released,omitempty"  yaml:"released,omitempty"`
	Country   string `json:"country,omitempty"   yaml:"country,omitempty"`
	Director  string `json:"director,omitempty"  yaml:"director,omitempty"`
	Studio    string `json:"studio,omitempty"    yaml:"studio,omitempty"`
	MPAA      string `json:"mpaa,omitempty"      yaml:"mpaa,omitempty"`

	UniqueIDs []UniqueID `json:"unique_ids,omitempty" yaml:"unique_ids,omitempty"`
	Genres    []string   `json:"genres"               yaml:"genres"`
	Tags      []string   `json:"tags"                 yaml:"tags"`
	Actors    []Actor    `json:"actors,omitempty"     yaml:"actors,omitempty"`

	// Local artwork hints. Remote URLs are never stored here.
	PosterHint string `json:"poster_hint,omitempty" yaml:"poster_hint,omitempty"`
	ThumbHint  string `json:"thumb_hint,omitempty"  yaml:"thumb_hint,omitempty"`
	FanartHint string `json:"fanart_hint,omitempty" yaml:"fanart_hint,omitempty"`
}

// Identifier returns the default unique id, the first one otherwise.
func (m *Metadata) Identifier() string {
	for _, uid := range m.UniqueIDs {
		if uid.Default {
			return uid.Value
		}
	}
	if len(m.UniqueIDs) > 0 {
		return m.UniqueIDs[0].Value
	}
	return ""
}
