package effects

import (
	"testing"

	"github.com/hay-kot/reviewdesk/pkg/executil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpener_Open(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		command  string
		url      string
		wantCmd  string
		wantArgs []string
		wantErr  bool
	}{
		{name: "linux", goos: "linux", url: "https://git.example.com/pr/4", wantCmd: "xdg-open", wantArgs: []string{"https://git.example.com/pr/4"}},
		{name: "darwin", goos: "darwin", url: "https://git.example.com/pr/4", wantCmd: "open", wantArgs: []string{"https://git.example.com/pr/4"}},
		{
			name:     "template",
			goos:     "linux",
			command:  "firefox {{ shq .URL }}",
			url:      "https://git.example.com/pr/4",
			wantCmd:  "sh",
			wantArgs: []string{"-c", "firefox 'https://git.example.com/pr/4'"},
		},
		{name: "rejects non http", goos: "linux", url: "file:///etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &executil.RecordingExecutor{}
			o := NewOpener(rec, tt.command)
			o.goos = tt.goos

			err := o.Open(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, rec.Recorded())
				return
			}
			require.NoError(t, err)

			cmds := rec.Recorded()
			require.Len(t, cmds, 1)
			assert.Equal(t, tt.wantCmd, cmds[0].Cmd)
			assert.Equal(t, tt.wantArgs, cmds[0].Args)
		})
	}
}
