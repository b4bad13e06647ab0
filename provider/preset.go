package provider

import (
	"github.com/sweetpotato0/chatroute/config"
)

// CreativityLevels are the accepted preset creativity values, from None to Very High.
var CreativityLevels = []string{"0.0", "0.3", "0.5", "0.7", "1.0"}

// DefaultCreativity is applied when a preset leaves creativity empty.
const DefaultCreativity = "0.7"

// Preset is a named provider configuration with its own system prompt.
type Preset struct {
	Name         string  `json:"name"`
	Provider     string  `json:"provider"`
	Creativity   string  `json:"creativity"`
	SystemPrompt string  `json:"system_prompt"`
	Options      Options `json:"options,omitempty"`
}

// Validate checks the preset fields.
func (p *Preset) Validate() error {
	v := config.NewValidator()
	v.RequireNonEmpty("name", p.Name)
	v.RequireNonEmpty("provider", p.Provider)
	if p.Creativity != "" {
		v.ValidateOneOf("creativity", p.Creativity, CreativityLevels...)
	}
	return v.Error()
}

// LayerOptions returns the preset option layer: extra options plus creativity.
func (p *Preset) LayerOptions() Options {
	layer := p.Options.Clone()
	if layer == nil {
		layer = make(Options)
	}
	creativity := p.Creativity
	if creativity == "" {
		creativity = DefaultCreativity
	}
	layer[OptionCreativity] = creativity
	return layer
}
