// Package testutil provides shared test helpers for config files and drawing fixtures.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/inkcalc/internal/drawing"
)

// SetupTestConfig writes a config file that passes validation without any credential.
// extra is appended verbatim to add top level sections such as client or openai.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string, extra string) string {
	t.Helper()

	configContent := `server:
  address: 127.0.0.1:0
  cors:
    allowed_origins:
      - http://localhost:3000
inference:
  provider: openai
tracing:
  enabled: false
` + extra

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithAPIKey adds a fake OpenAI credential pointing at baseURL.
func SetupTestConfigWithAPIKey(t *testing.T, tmpDir string, baseURL string) string {
	t.Helper()
	return SetupTestConfig(t, tmpDir, "openai:\n  api_key: fake-key-for-testing\n  model: gpt-4o-mini\n  base_url: "+baseURL+"\n")
}

// SetupBrokenConfig writes a config file that viper cannot parse.
func SetupBrokenConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server: [unclosed\n"), 0644))
	return cfgPath
}

// DrawingPNG encodes a width x height white image with a black horizontal line.
func DrawingPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.SetRGBA(x, y, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
		}
	}
	for x := width / 10; x < width*9/10; x++ {
		img.SetRGBA(x, height/2, color.RGBA{A: 0xff})
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// WriteDrawingPNG stores DrawingPNG under tmpDir and returns its path.
func WriteDrawingPNG(t *testing.T, tmpDir string) string {
	t.Helper()

	path := filepath.Join(tmpDir, "drawing.png")
	require.NoError(t, os.WriteFile(path, DrawingPNG(t, 120, 80), 0644))
	return path
}

// DataURL returns an image data URL whose payload decodes to exactly size bytes.
func DataURL(size int) string {
	return drawing.EncodeDataURL("image/png", bytes.Repeat([]byte{0x7f}, size))
}
