package handler

import (
	"net/http"
	"os"
	"path/filepath"
)

// Pages serves the broker's static HTML: the code-entry index, informational
// pages and the terminal success/fail pages rendered after a provider
// callback.
type Pages struct {
	dir string
}

func NewPages(dir string) *Pages {
	return &Pages{dir: dir}
}

func (p *Pages) serve(w http.ResponseWriter, r *http.Request, name string) {
	path := filepath.Join(p.dir, name)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func (p *Pages) Index(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, "index.html")
}

func (p *Pages) About(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, "about.html")
}

func (p *Pages) PrivacyPolicy(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, "privacy-policy.html")
}

func (p *Pages) Success(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, "success.html")
}

func (p *Pages) Fail(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, "fail.html")
}
