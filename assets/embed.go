package assets

import "embed"

//go:embed index.html
var FS embed.FS

// IndexPage returns the landing page served at "/".
func IndexPage() ([]byte, error) {
	return FS.ReadFile("index.html")
}
