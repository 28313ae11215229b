package nodes

import (
	"sync"

	"github.com/openobserve/swisspipe/pkg/models"
)

// Registry is a thread-safe map of NodeKind to Handler, adapted nearly
// verbatim from pkg/executor/registry.go's mutex-guarded Registry.
type Registry struct {
	mu       sync.RWMutex
	handlers map[models.NodeKind]Handler
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[models.NodeKind]Handler)}
}

// Register binds a Handler to a NodeKind, overwriting any prior binding.
func (r *Registry) Register(kind models.NodeKind, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = h
}

// Get returns the Handler for kind, or models.ErrHandlerNotFound.
func (r *Registry) Get(kind models.NodeKind) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[kind]
	if !ok {
		return nil, models.ErrHandlerNotFound
	}
	return h, nil
}

// Has reports whether kind has a registered Handler.
func (r *Registry) Has(kind models.NodeKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[kind]
	return ok
}

// List returns every registered NodeKind.
func (r *Registry) List() []models.NodeKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.NodeKind, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, k)
	}
	return out
}

// Unregister removes the Handler bound to kind, if any.
func (r *Registry) Unregister(kind models.NodeKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, kind)
}

// NewDefaultRegistry builds a Registry with every built-in handler bound,
// wiring deps through Deps.
func NewDefaultRegistry(deps Deps) *Registry {
	r := NewRegistry()
	r.Register(models.NodeKindTrigger, &TriggerHandler{})
	r.Register(models.NodeKindTransformer, &TransformerHandler{Sandbox: deps.Sandbox})
	r.Register(models.NodeKindCondition, &ConditionHandler{Sandbox: deps.Sandbox})
	r.Register(models.NodeKindHttpRequest, &HTTPRequestHandler{Client: deps.HTTPClient})
	r.Register(models.NodeKindEmail, &EmailHandler{Sender: deps.MailSender})
	r.Register(models.NodeKindDelay, &DelayHandler{})
	r.Register(models.NodeKindHumanInLoop, &HumanInLoopHandler{})
	r.Register(models.NodeKindAnthropic, &AnthropicHandler{Client: deps.HTTPClient, APIKey: deps.AnthropicAPIKey, BaseURL: deps.AnthropicURL})
	r.Register(models.NodeKindOpenObserve, &OpenObserveHandler{Client: deps.HTTPClient})
	return r
}
