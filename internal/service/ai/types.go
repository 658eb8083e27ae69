package ai

// ModelPreset selects sampling parameters for a generation call.
type ModelPreset string

const (
	PresetPrecise  ModelPreset = "precise"
	PresetBalanced ModelPreset = "balanced"
)

type ModelConfig struct {
	Temperature      float32
	TopP             float32
	TopK             int
	MaxOutputTokens  int
	ResponseMimeType string
}

// GenerateMetadata records which backend produced a response.
type GenerateMetadata struct {
	Provider     string
	Model        string
	UsedFallback bool
}

type GenerateOptions struct {
	Model    string
	Preset   ModelPreset
	JSONMode bool
}

type ProviderResult struct {
	Text  string
	Model string
}

func GetPresetConfig(preset ModelPreset) ModelConfig {
	switch preset {
	case PresetPrecise:
		return ModelConfig{
			Temperature:     0.1,
			TopP:            0.9,
			TopK:            20,
			MaxOutputTokens: 2048,
		}
	default:
		// insight payloads run long; leave room for equipment lists
		return ModelConfig{
			Temperature:     0.4,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 8192,
		}
	}
}

func presetOf(opts *GenerateOptions) ModelPreset {
	if opts == nil || opts.Preset == "" {
		return PresetBalanced
	}
	return opts.Preset
}
