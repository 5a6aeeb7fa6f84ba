package output

import (
	"encoding/json"
	"io"

	"github.com/knadh/koanf/parsers/yaml"
)

// YAMLFormatter formats data as YAML.
type YAMLFormatter struct{}

// Format formats data as YAML. Field names follow the json tags; values
// that are not objects are wrapped under "items".
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		m = map[string]any{"items": v}
	}
	out, err := yaml.Parser().Marshal(m)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
