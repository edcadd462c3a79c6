package strip

import (
	"encoding/json"

	"ledstrip-go/errcode"
	"ledstrip-go/services/strip/internal/core"
	"ledstrip-go/types"
	"ledstrip-go/x/conv"
	"ledstrip-go/x/timex"
)

// decodeConfig accepts the typed struct or anything JSON-shaped, as the
// config service publishes decoded objects.
func decodeConfig(p any) (types.StripConfig, error) {
	var cfg types.StripConfig
	switch v := p.(type) {
	case types.StripConfig:
		return v, nil
	case *types.StripConfig:
		if v == nil {
			return cfg, errcode.InvalidPayload
		}
		return *v, nil
	case []byte:
		return cfg, errcode.Wrap(errcode.InvalidPayload, "strip config", json.Unmarshal(v, &cfg))
	case string:
		return cfg, errcode.Wrap(errcode.InvalidPayload, "strip config", json.Unmarshal([]byte(v), &cfg))
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return cfg, errcode.Wrap(errcode.InvalidPayload, "strip config", err)
		}
		return cfg, errcode.Wrap(errcode.InvalidPayload, "strip config", json.Unmarshal(b, &cfg))
	default:
		return cfg, errcode.InvalidPayload
	}
}

// applyConfig updates pacing and rebinds remote codes. Bad entries are
// logged and skipped; the rest still apply.
func (s *Service) applyConfig(cfg types.StripConfig) {
	eng := s.loop.Engine()
	eng.SetPacing(core.ModeStatic, timex.Ms(cfg.StaticMs))
	eng.SetPacing(core.ModeFade, timex.Ms(cfg.FadeMs))
	eng.SetPacing(core.ModeRainbow, timex.Ms(cfg.RainbowMs))

	codes := s.loop.Controller().Codes()
	for name, hex := range cfg.Codes {
		cmd, ok := core.ParseCommand(name)
		if !ok {
			println("[strip] config: unknown command", name)
			continue
		}
		code, ok := conv.ParseU32Hex(hex)
		if !ok {
			println("[strip] config: bad code for", name, hex)
			continue
		}
		codes.Bind(cmd, code)
	}
}
