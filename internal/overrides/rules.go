package overrides

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind selects how a value is rendered into source text.
type Kind int

const (
	KindString Kind = iota // inside the existing quotes
	KindNumber
	KindBool
)

// Rule replaces one literal default assignment in the settings source.
// Find must match the source byte for byte; Format has a single %s verb
// for the rendered value.
type Rule struct {
	Path   string
	Find   string
	Format string
	Kind   Kind
}

// Rules is the closed set of overridable settings.
var Rules = []Rule{
	{"wifi.ssid", `settings.ssid                = "lee";`, `settings.ssid                = "%s";`, KindString},
	{"wifi.password", `settings.passwd              = "qqqqqqqq";`, `settings.passwd              = "%s";`, KindString},
	{"wifi.ap_mode", `settings.ap_mode             = false;`, `settings.ap_mode             = %s;`, KindBool},

	{"elegoo.ip", `settings.elegooip            = "192.168.1.123";`, `settings.elegooip            = "%s";`, KindString},
	{"elegoo.timeout", `settings.timeout             = 4000;`, `settings.timeout             = %s;`, KindNumber},
	{"elegoo.first_layer_timeout", `settings.first_layer_timeout = 8000;`, `settings.first_layer_timeout = %s;`, KindNumber},
	{"elegoo.start_print_timeout", `settings.start_print_timeout = 10000;`, `settings.start_print_timeout = %s;`, KindNumber},

	{"filament_sensor.pause_on_runout", `settings.pause_on_runout     = true;`, `settings.pause_on_runout     = %s;`, KindBool},
	{"filament_sensor.enabled", `settings.enabled             = true;`, `settings.enabled             = %s;`, KindBool},
	{"filament_sensor.pause_verification_timeout_ms", `settings.pause_verification_timeout_ms = 15000;`, `settings.pause_verification_timeout_ms = %s;`, KindNumber},
	{"filament_sensor.max_pause_retries", `settings.max_pause_retries   = 5;`, `settings.max_pause_retries   = %s;`, KindNumber},
}

// Render formats v as it should appear in the source. Values of the wrong
// type are substituted verbatim.
func (r Rule) Render(v gjson.Result) string {
	switch v.Type {
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	case gjson.String:
		return v.Str
	default:
		// Numbers keep their literal text; nested JSON is passed through.
		return strings.TrimSpace(v.Raw)
	}
}

// Accepts reports whether v has the JSON type the setting expects.
func (r Rule) Accepts(v gjson.Result) bool {
	switch r.Kind {
	case KindBool:
		return v.Type == gjson.True || v.Type == gjson.False
	case KindNumber:
		return v.Type == gjson.Number
	default:
		return v.Type == gjson.String
	}
}

// Replacement returns the full replacement text for value v.
func (r Rule) Replacement(v gjson.Result) string {
	return fmt.Sprintf(r.Format, r.Render(v))
}
