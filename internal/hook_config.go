package internal

import (
	"fmt"
	"log/slog"
)

// ConfigHook selects and populates each bundle's config for the app's environment.
// A bundle without a config for the environment contributes nothing, except
// the app bundle, which must declare one. The declared structs are never
// written to; the app stores populated copies.
type ConfigHook struct{}

// NewConfigHook creates the config hook.
func NewConfigHook() *ConfigHook {
	return &ConfigHook{}
}

func (h *ConfigHook) Spec() HookSpec {
	return HookSpec{
		Name:             "config",
		BundleModuleName: "config",
		Priority:         10,
		RunBefore:        []string{"extensions"},
	}
}

func (h *ConfigHook) RunHook(a *App, bundles []*Bundle) error {
	sections, err := readConfigFile(a.fs, a.configFile, false)
	if err != nil {
		return err
	}

	for _, b := range bundles {
		declared, ok := b.GetConfig(a.env)
		if !ok {
			if b.App {
				return missingConfigError(b.ModuleName()+".config", a.env.ConfigName())
			}
			continue
		}

		cfg, err := populateConfig(declared, sectionFor(sections, b), envPrefix(b))
		if err != nil {
			return &ConfigError{
				Err:     err,
				Module:  b.ModuleName() + ".config",
				Attr:    a.env.ConfigName(),
				Message: fmt.Sprintf("invalid %s in the %s.config module: %v", a.env.ConfigName(), b.ModuleName(), err),
			}
		}
		a.configs.set(b.Name(), cfg)
		a.recordAction("config", b.Name(), a.env.ConfigName())
		a.logger.Debug("loaded bundle config",
			slog.String("bundle", b.Name()),
			slog.String("config", a.env.ConfigName()),
		)
	}
	return nil
}

func (h *ConfigHook) UpdateShellContext(a *App, ctx map[string]any) {
	if cfg := a.AppConfig(); cfg != nil {
		ctx["config"] = cfg
	}
}
