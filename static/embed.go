package static

import "embed"

// FS embeds the PWA assets so the server runs standalone
//
//go:embed sw.js
var FS embed.FS
