package static

import "embed"

var (
	//go:embed css images
	Files embed.FS
)
