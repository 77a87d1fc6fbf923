// Package web provides the embedded static assets and content seed.
package web

import "embed"

// FS contains the fallback images under static/fallback and the CMS
// seed document under content.
//
//go:embed static content
var FS embed.FS

// FallbackDir is the directory inside FS holding placeholder images.
const FallbackDir = "static/fallback"

// FallbackIcon is the default placeholder inside FallbackDir.
const FallbackIcon = "tattoo-machine.svg"

// SeedFile is the path of the CMS seed document inside FS.
const SeedFile = "content/seed.json"
