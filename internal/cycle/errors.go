package cycle

import "fmt"

// ConfigError reports an analysis parameter that cannot be used.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// InputError reports a price series that breaks the pipeline's preconditions.
type InputError struct {
	Index  int
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input: sample %d: %s", e.Index, e.Reason)
}
