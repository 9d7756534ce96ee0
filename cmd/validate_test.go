// File: cmd/validate_test.go
package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "bell.yaml", bellScenario)
	bad := writeFile(t, dir, "ghost.yaml", "name: ghost\nagents:\n  - name: bob\n    actions:\n      - do: touch\n        target: nobody\n")

	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Equal(t, "ok bell (1 props, 1 agents)\n", out)

	out, err = execute(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out, "ok bell")
	assert.Contains(t, out, "invalid "+bad)
	assert.Contains(t, out, "unknown target")
}
