package chatapi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmitRequest_ValidateRejectsEmptyMessage(t *testing.T) {
	req := submitRequest{Message: ""}
	assert.Error(t, req.Validate())
}

func TestSubmitRequest_ValidateRejectsOverlongMessage(t *testing.T) {
	req := submitRequest{Message: strings.Repeat("a", 5000)}
	assert.Error(t, req.Validate())
}

func TestSubmitRequest_ValidateAcceptsOrdinaryMessage(t *testing.T) {
	req := submitRequest{Message: "what is my deductible", ThreadID: "t1"}
	assert.NoError(t, req.Validate())
}
