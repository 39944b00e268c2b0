package styles

import (
	"path"
	"strings"
)

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconClock   = "\uf017"
	IconComment = "\uf075"
	IconCheck   = "\uf00c"
	IconGitPR   = "\uf407"
	IconWarn    = "\uf071"
	IconError   = "\uf057"
	IconInfo    = "\uf05a"
	IconCursor  = "\u258c"
)

// File type icons
var (
	IconFileDefault  = "\uf15b "
	IconFileGo       = "\ue627 "
	IconFileJS       = "\U000F031E "
	IconFileTS       = "\U000F06E6 "
	IconFilePython   = "\ue606 "
	IconFileMarkdown = "\ue609 "
	IconFileJSON     = "\ue60b "
	IconFileYAML     = "\ue6a8 "
	IconFileRust     = "\ue7a8 "
	IconFileJava     = "\ue738 "
	IconFileShell    = "\uf489 "
	IconFileDocker   = "\U000F0868 "
)

var extIcons = map[string]string{
	".go":   IconFileGo,
	".js":   IconFileJS,
	".jsx":  IconFileJS,
	".ts":   IconFileTS,
	".tsx":  IconFileTS,
	".py":   IconFilePython,
	".md":   IconFileMarkdown,
	".json": IconFileJSON,
	".yaml": IconFileYAML,
	".yml":  IconFileYAML,
	".rs":   IconFileRust,
	".java": IconFileJava,
	".sh":   IconFileShell,
}

// FileIcon picks an icon for a file path by its extension.
func FileIcon(p string) string {
	base := path.Base(p)
	if strings.EqualFold(base, "Dockerfile") {
		return IconFileDocker
	}
	if icon, ok := extIcons[strings.ToLower(path.Ext(base))]; ok {
		return icon
	}
	return IconFileDefault
}
