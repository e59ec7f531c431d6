package evaluate

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// Config is the option mapping attached to an evaluator.
type Config map[string]any

// BaseDefaults are shared by every evaluator kind.
var BaseDefaults = Config{
	"enabled": true,
}

// MergeConfig layers base, kind defaults and overrides into a new Config.
// Later layers win on key collision; the inputs are not modified.
func MergeConfig(base, kind, overrides Config) Config {
	out := make(Config, len(base)+len(kind)+len(overrides))
	maps.Copy(out, base)
	maps.Copy(out, kind)
	maps.Copy(out, overrides)
	return out
}

// Decode fills out (a pointer to a struct) from the mapping. Values are weakly
// typed so that YAML integers, floats and strings coerce into the target fields.
func (c Config) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(c)); err != nil {
		return fmt.Errorf("failed to decode evaluator config: %w", err)
	}
	return nil
}

// Bool returns the named option as a bool, or def when absent or not convertible.
// Strings such as "false" (from environment expansion) are accepted.
func (c Config) Bool(key string, def bool) bool {
	v, ok := c[key]
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// String renders the mapping as sorted key=value pairs.
func (c Config) String() string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, c[k]))
	}
	return strings.Join(parts, ", ")
}
