package capabilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyrelay/internal/domain/models"
)

func TestRegistry_LoadsAllFourPaths(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	for _, path := range []models.Path{models.PathRAG, models.PathPatient, models.PathClinical, models.PathTool} {
		pc, ok := r.Get(path)
		assert.True(t, ok, "expected path %s to be registered", path)
		assert.NotEmpty(t, pc.Competency)
	}
}

func TestRegistry_ResolveRemapsUnknownPathToRAG(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	resolved, remapped := r.Resolve(models.Path("unheard_of"))
	assert.Equal(t, models.PathRAG, resolved)
	assert.True(t, remapped)

	resolved, remapped = r.Resolve(models.PathPatient)
	assert.Equal(t, models.PathPatient, resolved)
	assert.False(t, remapped)
}

func TestRegistry_DescribeListsEveryPath(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	desc := r.Describe()
	assert.Contains(t, desc, "rag:")
	assert.Contains(t, desc, "patient:")
	assert.Contains(t, desc, "clinical:")
	assert.Contains(t, desc, "tool:")
}
