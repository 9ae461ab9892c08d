package display

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRGB565(t *testing.T) {
	tests := []struct {
		c    Color
		want uint16
	}{
		{Color{0, 0, 0}, 0x0000},
		{Color{255, 255, 255}, 0xFFFF},
		{Color{255, 0, 0}, 0xF800},
		{Color{0, 255, 0}, 0x07E0},
		{Color{0, 0, 255}, 0x001F},
		{Color{0, 127, 0}, 0x03E0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RGB565(tt.c), "%+v", tt.c)
	}
}

func TestFramebuffer_WriteGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fb1")
	require.NoError(t, os.WriteFile(path, make([]byte, Width*Height*2), 0644))

	fb, err := OpenFramebuffer(path)
	require.NoError(t, err)

	g := Solid(Color{0, 0, 255})
	g[Width+2] = Color{255, 0, 0} // x=2, y=1
	require.NoError(t, fb.WriteGrid(g))
	require.NoError(t, fb.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, Width*Height*2)

	assert.Equal(t, uint16(0x001F), binary.LittleEndian.Uint16(data[0:]))
	assert.Equal(t, uint16(0xF800), binary.LittleEndian.Uint16(data[(Width+2)*2:]))
	assert.Equal(t, uint16(0x001F), binary.LittleEndian.Uint16(data[len(data)-2:]))

	// Writing after close fails
	err = fb.WriteGrid(g)
	assert.True(t, errors.Is(err, ErrWrite))
	assert.NoError(t, fb.Close())
}

func TestFindFramebuffer(t *testing.T) {
	sysfs := t.TempDir()
	for name, fbName := range map[string]string{
		"fb0": "simple",
		"fb1": SenseHATFramebufferName,
	} {
		dir := filepath.Join(sysfs, name)
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "name"), []byte(fbName+"\n"), 0644))
	}

	path, err := FindFramebuffer(sysfs, SenseHATFramebufferName)
	require.NoError(t, err)
	assert.Equal(t, "/dev/fb1", path)

	_, err = FindFramebuffer(sysfs, "nope")
	assert.Error(t, err)
}
