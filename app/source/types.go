package source

// Configuration for one discovery source (a WordPress sitemap or an
// RSS/Atom feed that lists post URLs).

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Type     string         `yaml:"type"` // "sitemap" (default) or "rss"
	Settings ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	Timeout         int  `yaml:"timeout"`          // seconds
}
