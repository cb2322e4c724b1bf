package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"Floodlight/internal/renderer"
	"Floodlight/internal/tuning"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, float32(75), cfg.Camera.Fov)
	assert.Equal(t, [3]float32{0, 4, 6}, cfg.Camera.Position)
	assert.Equal(t, [3]float32{0, 1.65, 0}, cfg.Camera.Target)
	assert.Equal(t, Hex(0x262837), cfg.Fog.Color)
	assert.Equal(t, float32(0.04), cfg.Fog.Density)
	assert.Equal(t, BloomConfig{Threshold: 0, Strength: 2, Radius: 0.5}, cfg.Bloom)
	assert.Equal(t, float32(0.01), cfg.Helpers.Opacity)
	assert.Nil(t, cfg.Helpers.Color)
	assert.False(t, cfg.Helpers.ShowLightHelpers)
	assert.False(t, cfg.Renderer.FrustumCulling)
	assert.False(t, cfg.Renderer.Wireframe)
	assert.Equal(t, float32(0.2), cfg.Model.Scale)
	assert.Equal(t, tuning.DefaultOptions(), cfg.Debug)

	tm, err := cfg.ToneMapping()
	require.NoError(t, err)
	assert.Equal(t, renderer.ACESFilmicToneMapping, tm)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floodlight.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"fog": {"color": "#000000"},
		"renderer": {"tone_mapping": "reinhard"},
		"helpers": {"color": "0xff8800", "show_camera_helpers": true},
		"debug": {"intensity": 42}
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Hex(0), cfg.Fog.Color)
	assert.Equal(t, float32(0.04), cfg.Fog.Density, "unnamed fields keep defaults")
	require.NotNil(t, cfg.Helpers.Color)
	assert.Equal(t, Hex(0xff8800), *cfg.Helpers.Color)
	assert.True(t, cfg.Helpers.ShowCameraHelpers)
	assert.Equal(t, float32(42), cfg.Debug.Intensity)
	assert.Equal(t, float32(12), cfg.Debug.Height)

	tm, err := cfg.ToneMapping()
	require.NoError(t, err)
	assert.Equal(t, renderer.ReinhardToneMapping, tm)
}

func TestLoadRendererToggles(t *testing.T) {
	cases := map[string]struct {
		body               string
		culling, wireframe bool
	}{
		"frustum culling": {`{"renderer": {"frustum_culling": true}}`, true, false},
		"wireframe":       {`{"renderer": {"wireframe": true}}`, false, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "floodlight.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tc.culling, cfg.Renderer.FrustumCulling)
			assert.Equal(t, tc.wireframe, cfg.Renderer.Wireframe)
			assert.True(t, cfg.Renderer.Shadows, "unnamed fields keep defaults")
		})
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"syntax":      `{"window": `,
		"color":       `{"fog": {"color": "teal"}}`,
		"tonemapping": `{"renderer": {"tone_mapping": "filmic"}}`,
		"window":      `{"window": {"width": 0}}`,
		"clip":        `{"camera": {"near": 10, "far": 1}}`,
		"scale":       `{"model": {"scale": 0}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "floodlight.json")
	cfg := Default()
	cfg.Model.Path = "robot.glb"
	orange := Hex(0xffa500)
	cfg.Helpers.Color = &orange

	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"color": "#262837"`)
	assert.Contains(t, string(data), "\n  \"window\"")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestHexText(t *testing.T) {
	out, err := json.Marshal(Hex(0xff))
	require.NoError(t, err)
	assert.Equal(t, `"#0000ff"`, string(out))

	var h Hex
	require.NoError(t, json.Unmarshal([]byte(`"#ABCDEF"`), &h))
	assert.Equal(t, Hex(0xabcdef), h)
	assert.Error(t, json.Unmarshal([]byte(`"#1000000"`), &h))
}
