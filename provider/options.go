package provider

import (
	"maps"
	"strconv"
)

// Well-known option keys understood by the bundled adapters.
const (
	OptionCreativity  = "creativity"
	OptionTemperature = "temperature"
	OptionModel       = "model"
	OptionMaxTokens   = "max_tokens"
)

// Options are provider-accepted generation parameters.
type Options map[string]any

// Clone returns a shallow copy; nil stays nil.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	return maps.Clone(o)
}

// MergeOptions overlays layers from lowest to highest precedence; later layers win on
// key collisions. The result is always a fresh map.
func MergeOptions(layers ...Options) Options {
	merged := make(Options)
	for _, layer := range layers {
		maps.Copy(merged, layer)
	}
	return merged
}

// String returns a string option.
func (o Options) String(key string) (string, bool) {
	v, ok := o[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Float returns a numeric option. Strings holding a number are accepted because
// presets store creativity as text.
func (o Options) Float(key string) (float64, bool) {
	switch v := o[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// Int returns an integer option.
func (o Options) Int(key string) (int64, bool) {
	switch v := o[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Temperature resolves the sampling temperature: an explicit temperature wins over
// creativity.
func (o Options) Temperature() (float64, bool) {
	if t, ok := o.Float(OptionTemperature); ok {
		return t, true
	}
	return o.Float(OptionCreativity)
}

// Model returns the model option, or fallback when unset.
func (o Options) Model(fallback string) string {
	if m, ok := o.String(OptionModel); ok && m != "" {
		return m
	}
	return fallback
}
