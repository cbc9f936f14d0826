package operations

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/bearer-mcp/internal/domain/bearer"
)

func TestBuildScan_FixedFlagsOnly(t *testing.T) {
	work := t.TempDir()
	inv, err := BuildScan("/workspace", domain.ArgumentSet{}, NewResolver("", work))
	require.NoError(t, err)

	assert.Equal(t, []string{"scan", "/workspace", "--scanner", "sast,secrets", "--no-color", "--skip-test=false"}, inv.Args)
	assert.Equal(t, work, inv.WorkDir)
}

func TestBuildScan_CanonicalOrder(t *testing.T) {
	work := t.TempDir()
	paths := NewResolver("", work)
	want := []string{
		"scan", "/src",
		"--scanner", "sast,secrets", "--no-color", "--skip-test=false",
		"--format", "sarif",
		"--severity", "high",
		"--only-rule", "a,b",
		"--skip-rule", "c",
		"--output", filepath.Join(work, "report.sarif"),
		"--quiet",
	}

	// map literal order is irrelevant, run it a few times to shake iteration order
	for i := 0; i < 20; i++ {
		args := domain.ArgumentSet{
			"quiet":       true,
			"output_file": "report.sarif",
			"skip_rules":  "c",
			"rules":       "a,b",
			"severity":    "high",
			"format":      "sarif",
		}
		inv, err := BuildScan("/src", args, paths)
		require.NoError(t, err)
		assert.Equal(t, want, inv.Args)
	}
}

func TestBuildScan_QuietFalseOmitted(t *testing.T) {
	inv, err := BuildScan("/src", domain.ArgumentSet{"quiet": false, "format": "json"}, NewResolver("", t.TempDir()))
	require.NoError(t, err)
	assert.NotContains(t, inv.Args, "--quiet")
	assert.Equal(t, []string{"--format", "json"}, inv.Args[len(inv.Args)-2:])
}

func TestBuildScan_InvalidOutputFile(t *testing.T) {
	_, err := BuildScan("/src", domain.ArgumentSet{"output_file": "a\x00b"}, NewResolver("", t.TempDir()))
	assert.ErrorIs(t, err, domain.ErrInvalidPath)
}

func TestBuildNonScan(t *testing.T) {
	v := BuildVersion("/work")
	assert.Equal(t, []string{"version"}, v.Args)
	assert.Equal(t, "/work", v.WorkDir)

	i := BuildInit("/repo")
	assert.Equal(t, []string{"init"}, i.Args)
	assert.Equal(t, "/repo", i.WorkDir)
}
