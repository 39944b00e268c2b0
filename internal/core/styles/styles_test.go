package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
)

func TestThemes(t *testing.T) {
	names := ThemeNames()
	assert.Contains(t, names, DefaultTheme)
	assert.IsIncreasing(t, names)

	for _, name := range names {
		p, ok := GetPalette(name)
		assert.True(t, ok, name)
		assert.NotEmpty(t, p.Primary, name)
	}

	_, ok := GetPalette("nope")
	assert.False(t, ok)
}

func TestBandColor(t *testing.T) {
	p, _ := GetPalette("gruvbox")
	SetTheme(p)
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	assert.Equal(t, p.Success, BandColor(sessionclock.BandGreen))
	assert.Equal(t, p.Warning, BandColor(sessionclock.BandAmber))
	assert.Equal(t, p.Error, BandColor(sessionclock.BandRed))
}

func TestFileIcon(t *testing.T) {
	assert.Equal(t, IconFilePython, FileIcon("app/main.py"))
	assert.Equal(t, IconFileGo, FileIcon("cmd/x.GO"))
	assert.Equal(t, IconFileDocker, FileIcon("build/Dockerfile"))
	assert.Equal(t, IconFileDefault, FileIcon("LICENSE"))
}

func TestColorForString(t *testing.T) {
	assert.Equal(t, ColorForString("python"), ColorForString("python"))
	assert.Contains(t, ColorPool, ColorForString("django"))
}
