package capabilities

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"policyrelay/internal/domain/models"
)

//go:embed config/paths.yaml
var configFiles embed.FS

// Registry holds the declared competency for every routing path. The Plan
// stage includes its Describe() output in the LLM decomposition prompt so
// the planner only proposes subquestions routable to an available path.
type Registry struct {
	mu    sync.RWMutex
	paths map[models.Path]PathCapability
}

// NewRegistry loads the embedded path-capability declarations.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/paths.yaml")
	if err != nil {
		return nil, fmt.Errorf("read paths.yaml: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal paths.yaml: %w", err)
	}

	r := &Registry{paths: make(map[models.Path]PathCapability, len(file.Paths))}
	for _, p := range file.Paths {
		r.paths[models.Path(p.Path)] = p
	}
	return r, nil
}

// Get returns the declared capability for path, and whether it is known.
func (r *Registry) Get(path models.Path) (PathCapability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pc, ok := r.paths[path]
	return pc, ok
}

// Resolve remaps an unknown path to models.PathRAG so the planner can
// never route a subquestion nowhere. Returns the resolved path and
// whether a remap occurred.
func (r *Registry) Resolve(path models.Path) (models.Path, bool) {
	r.mu.RLock()
	_, known := r.paths[path]
	r.mu.RUnlock()
	if known {
		return path, false
	}
	return models.PathRAG, true
}

// Describe renders every declared path and competency as a block suitable
// for inclusion in the decomposition prompt.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for _, path := range []models.Path{models.PathRAG, models.PathPatient, models.PathClinical, models.PathTool} {
		pc, ok := r.paths[path]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", pc.Path, strings.TrimSpace(pc.Competency))
	}
	return b.String()
}
