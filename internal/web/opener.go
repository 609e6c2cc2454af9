package web

import (
	"fmt"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
)

var sites = map[string]string{
	"google":         "https://google.com",
	"youtube":        "https://youtube.com",
	"github":         "https://github.com",
	"stack overflow": "https://stackoverflow.com",
	"wikipedia":      "https://wikipedia.org",
	"reddit":         "https://reddit.com",
	"gmail":          "https://gmail.com",
}

// ResolveSite maps a site alias to its URL. Unknown names are treated as a
// hostname; known reports whether the alias table matched.
func ResolveSite(name string) (url string, known bool) {
	name = strings.TrimSpace(strings.ToLower(name))
	if u, ok := sites[name]; ok {
		return u, true
	}
	return "https://" + name, false
}

type Opener interface {
	Open(url string) error
}

// BrowserOpener opens URLs in the system's default browser.
type BrowserOpener struct {
	open func(string)
}

func NewBrowserOpener() *BrowserOpener {
	return &BrowserOpener{open: launcher.Open}
}

func (b *BrowserOpener) Open(url string) error {
	if url == "" || url == "https://" {
		return fmt.Errorf("open: empty url")
	}
	b.open(url)
	return nil
}
