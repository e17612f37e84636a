package types

import "time"

// InputFormat selects how the Loader parses the input file.
type InputFormat string

const (
	// FormatDelimited is comma- or tab-separated text, detected from the first line.
	FormatDelimited InputFormat = "delimited"

	// FormatSpreadsheet is an Excel workbook; the first sheet is read.
	FormatSpreadsheet InputFormat = "spreadsheet"
)

// HTTPConfig holds shared HTTP settings used when talking to the lookup service.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "cas2smiles/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// LookupConfig holds settings for the PubChem resolver and the batch loop.
type LookupConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the PUG REST root (default https://pubchem.ncbi.nlm.nih.gov/rest/pug).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Delay is the pause between consecutive lookups (default 200ms, which
	// keeps under PubChem's five requests per second).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// HistoryConfig holds settings for the optional run history database.
type HistoryConfig struct {
	// DB is the SQLite database path. Empty disables history.
	DB string `json:"db" yaml:"db" mapstructure:"db"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups every setting the CLI resolves from flags, environment, and
// the config file.
type Config struct {
	Lookup  LookupConfig  `json:"lookup" yaml:"lookup" mapstructure:"lookup"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}
