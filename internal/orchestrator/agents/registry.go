package agents

import "policyrelay/internal/domain/models"

// Registry dispatches a resolved path to its Agent implementation.
type Registry struct {
	byPath map[models.Path]Agent
}

// NewRegistry wires the four known paths to their agents. rag is the only
// path backed by retrieval and an LLM call; the rest are fixed refusals.
func NewRegistry(rag Agent) *Registry {
	return &Registry{byPath: map[models.Path]Agent{
		models.PathRAG:      rag,
		models.PathPatient:  NewPatientAgent(),
		models.PathClinical: NewClinicalAgent(),
		models.PathTool:     NewToolAgent(),
	}}
}

// Get returns the agent for path, and whether one is registered.
func (r *Registry) Get(path models.Path) (Agent, bool) {
	a, ok := r.byPath[path]
	return a, ok
}
