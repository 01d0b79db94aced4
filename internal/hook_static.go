package internal

import (
	"net/http"
	"strings"

	"github.com/spf13/afero"
)

// StaticHook serves each bundle's static folder at its static URL path.
// Directory listings are disabled. Files are served with default cache headers.
type StaticHook struct{}

// NewStaticHook creates the static hook.
func NewStaticHook() *StaticHook {
	return &StaticHook{}
}

func (h *StaticHook) Spec() HookSpec {
	return HookSpec{
		Name:             "static",
		BundleModuleName: staticDir,
		Priority:         90,
		RunAfter:         []string{"bundle_routes"},
	}
}

func (h *StaticHook) RunHook(a *App, bundles []*Bundle) error {
	mounted := make(map[string]bool)
	for _, bundle := range bundles {
		// Derived bundles serve their ancestors' assets too; the first mount of a path wins.
		for _, b := range bundle.Hierarchy(true, false) {
			meta := a.BundleMeta(b)
			if meta.StaticFolder == "" || mounted[meta.StaticURLPath] {
				continue
			}
			mounted[meta.StaticURLPath] = true
			a.router.Handle(meta.StaticURLPath+"/*", staticHandler(a.fs, meta.StaticFolder, meta.StaticURLPath))
			a.recordAction("static", b.Name(), meta.StaticURLPath)
		}
	}
	return nil
}

func staticHandler(fsys afero.Fs, folder, urlPath string) http.Handler {
	fileServer := http.StripPrefix(urlPath, http.FileServerFS(afero.NewIOFS(afero.NewBasePathFs(fsys, folder))))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Block directory listings
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("X-Content-Type-Options", "nosniff")

		fileServer.ServeHTTP(w, r)
	})
}
