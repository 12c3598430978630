// Package outputlayout computes the deterministic on-disk path for a
// transcoded file given its classified name and the configured output
// root.
package outputlayout

import (
	"fmt"
	"path/filepath"

	"github.com/bugale/Buganime/internal/classifier"
)

// OutputPath returns the destination path for parsed under outputRoot:
//   - TV show: <root>/TV Shows/<name>/<name> S{season:02}E{episode:02}.mkv
//   - Movie:   <root>/Movies/<name>.mkv
func OutputPath(outputRoot string, parsed classifier.ParsedName) string {
	switch v := parsed.(type) {
	case classifier.TVShow:
		fileName := fmt.Sprintf("%s S%02dE%02d.mkv", v.Name, v.Season, v.Episode)
		return filepath.Join(outputRoot, "TV Shows", v.Name, fileName)
	case classifier.Movie:
		return filepath.Join(outputRoot, "Movies", v.Name+".mkv")
	default:
		panic(fmt.Sprintf("outputlayout: unhandled ParsedName type %T", parsed))
	}
}
