package priority

// DefaultsFunc supplies a baseline priority list.
type DefaultsFunc func() []string

// baseline is the order of the middleware shipped in internal/middleware as
// of v1. It is configuration data: replace it with WithDefaults or
// WithDefaultsFrom rather than editing it when the shipped set changes.
var baseline = []string{
	"request_id",
	"recover",
	"metrics",
	"logging",
	"auth",
	"ratelimit",
}

// Defaults returns a fresh copy of the built-in baseline order.
func Defaults() []string {
	return clone(baseline)
}
