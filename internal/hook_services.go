package internal

import (
	"fmt"
	"log/slog"
)

// Service is an injectable unit registered in the shared registry under its injection name.
//
// Example:
//
//	type UserManager struct {
//	    DB      *db.Extension `inject:"db"`
//	    Mailer  *MailService  `inject:""` // injected as "mail_service"
//	}
//
//	func (*UserManager) InjectionName() string { return "user_manager" }
type Service interface {
	InjectionName() string
}

// ServiceInitializer is implemented by services that finish their setup
// once all of their dependencies have been injected.
type ServiceInitializer interface {
	InitService(r *Registry) error
}

// ServicesHook registers the services of every bundle and then wires their dependencies.
type ServicesHook struct {
	collector Collector[Service]
}

// NewServicesHook creates the services hook.
func NewServicesHook() *ServicesHook {
	return &ServicesHook{
		collector: Collector[Service]{
			CollectFromBundle: func(b *Bundle) ([]Service, error) {
				return b.Services, nil
			},
			TypeCheck: func(s Service) bool {
				return s != nil && s.InjectionName() != ""
			},
			KeyName: func(s Service) string {
				return s.InjectionName()
			},
		},
	}
}

func (h *ServicesHook) Spec() HookSpec {
	return HookSpec{
		Name:             "services",
		BundleModuleName: "services",
		Priority:         65,
		RunAfter:         []string{"extensions"},
	}
}

func (h *ServicesHook) RunHook(a *App, bundles []*Bundle) error {
	services, err := h.collector.Collect(bundles)
	if err != nil {
		return err
	}
	for _, svc := range services {
		a.logger.Debug("registering service",
			slog.String("service", svc.InjectionName()),
			slog.String("type", fmt.Sprintf("%T", svc)),
		)
		if err := a.registry.RegisterService(svc); err != nil {
			return err
		}
		a.recordAction("services", svc.InjectionName(), fmt.Sprintf("%T", svc))
	}
	return initServices(a.registry)
}

func (h *ServicesHook) UpdateShellContext(a *App, ctx map[string]any) {
	for _, name := range a.registry.ServiceNames() {
		svc, _ := a.registry.Service(name)
		ctx[name] = svc
	}
}
