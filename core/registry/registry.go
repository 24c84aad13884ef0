// Package registry catalogs the platform microservices and the database
// objects assigned to each of them.
//
// Every microservice owns a dedicated Supabase-hosted PostgreSQL database and
// a custom schema inside it. The registry is the single source of truth for
// that mapping: grants generation, verification and key minting all resolve
// service names through it.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/giamma80/gymbro-platform-sub001/core/platform"
)

// Service describes one platform microservice and its database assignment.
type Service struct {
	// Name is the kebab-case service name (e.g. "calorie-balance").
	Name string `mapstructure:"name" json:"name"`
	// Schema is the snake_case custom schema exposed through the API layer.
	// Derived from Name when empty.
	Schema string `mapstructure:"schema" json:"schema"`
	// Database is the dedicated database name for the service. Derived from
	// Schema when empty.
	Database string `mapstructure:"database" json:"database"`
	// Description is a short human-readable summary for listings.
	Description string `mapstructure:"description" json:"description"`
}

// Title returns the service name as a display title ("calorie-balance" ->
// "Calorie Balance").
func (s Service) Title() string {
	caser := cases.Title(language.English)
	return caser.String(strings.ReplaceAll(s.Name, "-", " "))
}

// Registry holds the known services keyed by name.
type Registry struct {
	services map[string]Service
}

// Default returns a registry seeded with the platform's built-in services.
func Default() *Registry {
	r := New()
	for _, svc := range builtinServices() {
		// Built-in entries are well-formed, Register cannot fail on them.
		_ = r.Register(svc)
	}
	return r
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{services: make(map[string]Service)}
}

// Register validates and adds a service, deriving schema and database names
// when they are not set. Registering an existing name replaces the entry,
// which is how config files override built-in defaults.
func (r *Registry) Register(svc Service) error {
	if err := platform.ValidateServiceName(svc.Name); err != nil {
		return fmt.Errorf("invalid service: %w", err)
	}
	if svc.Schema == "" {
		svc.Schema = platform.NormalizeSchemaName(svc.Name)
	}
	if err := platform.ValidateSchemaName(svc.Schema); err != nil {
		return fmt.Errorf("invalid service %q: %w", svc.Name, err)
	}
	if svc.Database == "" {
		svc.Database = svc.Schema
	}
	r.services[svc.Name] = svc
	return nil
}

// Lookup resolves a service by name.
func (r *Registry) Lookup(name string) (Service, error) {
	svc, ok := r.services[name]
	if !ok {
		return Service{}, fmt.Errorf("unknown service %q (known: %v)", name, r.Names())
	}
	return svc, nil
}

// Names returns the registered service names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Services returns all registered services sorted by name.
func (r *Registry) Services() []Service {
	services := make([]Service, 0, len(r.services))
	for _, name := range r.Names() {
		services = append(services, r.services[name])
	}
	return services
}

// Resolve returns the service for name, or a synthetic entry for unregistered
// services when explicitSchema is given. This keeps the generator usable for
// new microservices before they land in the registry.
func (r *Registry) Resolve(name, explicitSchema string) (Service, error) {
	svc, err := r.Lookup(name)
	if err == nil {
		if explicitSchema != "" && explicitSchema != svc.Schema {
			return Service{}, fmt.Errorf("service %q is registered with schema %q, refusing to generate for %q", name, svc.Schema, explicitSchema)
		}
		return svc, nil
	}
	if explicitSchema == "" {
		return Service{}, err
	}
	svc = Service{Name: name, Schema: explicitSchema}
	if verr := platform.ValidateServiceName(svc.Name); verr != nil {
		return Service{}, verr
	}
	if verr := platform.ValidateSchemaName(svc.Schema); verr != nil {
		return Service{}, verr
	}
	svc.Database = svc.Schema
	return svc, nil
}

func builtinServices() []Service {
	return []Service{
		{Name: "calorie-balance", Description: "Energy intake and expenditure ledger"},
		{Name: "meal-tracking", Description: "Meal logging and nutrition breakdown"},
		{Name: "health-monitor", Description: "Vitals and wearable data ingestion"},
		{Name: "notifications", Description: "Push and email notification delivery"},
		{Name: "ai-coach", Description: "Conversational coaching sessions"},
		{Name: "user-management", Description: "Accounts, profiles and preferences"},
	}
}
