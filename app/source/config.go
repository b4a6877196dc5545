package source

// Config describes one remote feed the service republishes. Name comes from
// the YAML file name.
type Config struct {
	Name     string         `yaml:"-"`
	URL      string         `yaml:"url"`
	Format   string         `yaml:"format"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxItems        int  `yaml:"max_items"`
	Timeout         int  `yaml:"timeout"` // seconds
	ExtractContent  bool `yaml:"extract_content"`
}

// ConfigFilter matches Field case-insensitively. Field is any item value
// name: title, link, author, an extension element such as category, and so on.
type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
