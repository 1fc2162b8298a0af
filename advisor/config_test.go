package advisor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "./models", cfg.Artifacts.Dir)
	assert.Equal(t, "float_input", cfg.Runtime.InputName)
	assert.Equal(t, "figs/escalation_prob.png", cfg.Render.Path)
	assert.Equal(t, DefaultColumnCandidates().Narrative, cfg.Columns.Narrative)
	assert.Positive(t, cfg.Workers)
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.json")
	var cfg Config
	cfg.Artifacts.Dir = "/srv/models"
	cfg.Runtime.OrtDLL = "/usr/lib/libonnxruntime.so"
	cfg.Render.Enabled = true
	cfg.Workers = 3
	cfg.Columns.Narrative = []string{"story"}
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/models", loaded.Artifacts.Dir)
	assert.Equal(t, "/usr/lib/libonnxruntime.so", loaded.Runtime.OrtDLL)
	assert.True(t, loaded.Render.Enabled)
	assert.Equal(t, 3, loaded.Workers)
	assert.Equal(t, []string{"story"}, loaded.Columns.Narrative)
	assert.Equal(t, DefaultColumnCandidates().Disputed, loaded.Columns.Disputed)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("ADVISOR_RUNTIME_ORTDLL", "/opt/ort.so")
	t.Setenv("ADVISOR_WORKERS", "7")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "/opt/ort.so", cfg.Runtime.OrtDLL)
	assert.Equal(t, 7, cfg.Workers)
}

func TestArtifactConfigPath(t *testing.T) {
	a := ArtifactConfig{Dir: "models"}
	assert.Equal(t, filepath.Join("models", "schema.json"), a.Path("schema.json"))
	assert.Equal(t, "/abs/x.onnx", a.Path("/abs/x.onnx"))
	assert.Equal(t, "", a.Path(""))
}
