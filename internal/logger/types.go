package logger

// Level represents the logging level
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
	FatalLevel Level = "fatal"
)

// Config holds the logger configuration
type Config struct {
	Level Level `mapstructure:"level" yaml:"level"`

	// Output format (json or console)
	Format string `mapstructure:"format" yaml:"format"`

	// Output destination (stdout, stderr or file path)
	Output string `mapstructure:"output" yaml:"output"`

	Development bool `mapstructure:"development" yaml:"development"`

	// Service is attached to every entry as the "service" field.
	Service string `mapstructure:"service" yaml:"service"`

	Sampling struct {
		Initial    int `mapstructure:"initial" yaml:"initial"`
		Thereafter int `mapstructure:"thereafter" yaml:"thereafter"`
	} `mapstructure:"sampling" yaml:"sampling"`
}

// Standard field keys shared by the pipeline components.
const (
	FieldRequestID = "requestID"
	FieldJobID     = "jobID"
	FieldComponent = "component"
)
