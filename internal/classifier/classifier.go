// Package classifier implements the filename classifier: a layered regex
// cascade that maps release-group naming conventions to structured
// metadata (TV show or movie).
package classifier

import (
	"regexp"
	"strconv"
	"strings"
)

type (
	// ParsedName is the tagged union produced by Classify: either a TVShow
	// or a Movie.
	ParsedName interface {
		isParsedName()
	}

	// TVShow is a television episode. Season 0 denotes specials/OVAs.
	TVShow struct {
		Name    string
		Season  int
		Episode int
	}

	// Movie is a standalone film.
	Movie struct {
		Name string
	}
)

func (TVShow) isParsedName() {}
func (Movie) isParsedName()  {}

var (
	separatorRunRe  = regexp.MustCompile(`[_+\-. ]+`)
	bracketGroupRe  = regexp.MustCompile(`\[[^\]]*]`)
	parenGroupRe    = regexp.MustCompile(`\([^)]*\)`)
	resolutionTagRe = regexp.MustCompile(`\d{3,4}p [^\\]*`)
	pathSpacingRe   = regexp.MustCompile(` *\\ *`)

	specialsRe = regexp.MustCompile(
		`^(?P<name>.+?) (?:S(?:eason ?)?\d{1,2} )?(?:Special|SP|OVA|OAV|Picture Drama)(?: E?(?P<episode>\d{1,3})?)?$`)
	formattedStandaloneRe = regexp.MustCompile(
		`^(?P<name>.+?) S(?P<season>\d{1,2})E(?P<episode>\d{1,3})(?: .*)?$`)
	structuredDirectoryRe = regexp.MustCompile(
		`^.*\\(?P<name>[^\\]+?) S(?:eason ?)?\d{1,2}(?:P\d{1,2})?(?: [^\\]*)?(?:\\.*)?\\[^\\]*S(?P<season>\d{1,2})E(?P<episode>\d{1,3})(?: [^\\]*)?$`)

	// otherStandaloneSuffixRe and otherStandaloneLookaheadRe together
	// emulate the original pattern's negative lookahead
	// `(?!.* \d{2}(?: |$).*)`, which Go's RE2 engine cannot express
	// directly: the suffix is matched structurally first, then its
	// captured "rest" is checked against the lookahead pattern in plain
	// Go code. See matchOtherStandalone.
	otherStandaloneSuffixRe = regexp.MustCompile(
		`^(?:S(?:eason ?)?(?P<season>\d{1,2}) ?)?E?(?P<episode>\d{1,3})(?:v\d+)?(?P<rest> .*)?$`)
	otherStandaloneLookaheadRe = regexp.MustCompile(` \d{2}(?: |$)`)
)

// Classify maps a path (Windows-style, backslash-separated) to a TVShow or
// a Movie. Forward slashes are not normalized; the classifier is defined
// against Windows-style paths.
func Classify(path string) ParsedName {
	preprocessed := preprocess(path)
	inputName := strings.Trim(lastSegment(preprocessed), " ")

	if m := matchNamed(specialsRe, inputName); m != nil {
		episode := 1
		if e := m["episode"]; e != "" {
			episode, _ = strconv.Atoi(e)
		}
		return TVShow{Name: m["name"], Season: 0, Episode: episode}
	}

	if m := matchNamed(formattedStandaloneRe, inputName); m != nil {
		season, _ := strconv.Atoi(m["season"])
		episode, _ := strconv.Atoi(m["episode"])
		return TVShow{Name: m["name"], Season: season, Episode: episode}
	}

	if m := matchNamed(structuredDirectoryRe, preprocessed); m != nil {
		season, _ := strconv.Atoi(m["season"])
		episode, _ := strconv.Atoi(m["episode"])
		return TVShow{Name: m["name"], Season: season, Episode: episode}
	}

	if show, ok := matchOtherStandalone(inputName); ok {
		return show
	}

	return Movie{Name: inputName}
}

// preprocess runs six normalization steps: strip the extension, collapse
// separator runs, drop bracket/paren groups, drop resolution tags,
// collapse path spacing, and trim leading/trailing space and dashes.
func preprocess(path string) string {
	path = stripExtension(path)
	path = separatorRunRe.ReplaceAllString(path, " ")
	path = bracketGroupRe.ReplaceAllString(path, "")
	path = parenGroupRe.ReplaceAllString(path, "")
	path = resolutionTagRe.ReplaceAllString(path, "")
	path = pathSpacingRe.ReplaceAllString(path, `\`)
	path = strings.Trim(path, " -")
	return path
}

// stripExtension drops the last "." extension from the final path
// component only, leaving dots in directory names untouched (the same
// rule as os.path.splitext).
func stripExtension(path string) string {
	basenameStart := strings.LastIndexByte(path, '\\') + 1
	dot := strings.LastIndexByte(path[basenameStart:], '.')
	if dot <= 0 {
		return path
	}
	return path[:basenameStart+dot]
}

func lastSegment(path string) string {
	if idx := strings.LastIndexByte(path, '\\'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// matchNamed runs re against s and returns its named capture groups, or nil
// if re does not match.
func matchNamed(re *regexp.Regexp, s string) map[string]string {
	sub := re.FindStringSubmatch(s)
	if sub == nil {
		return nil
	}
	groups := make(map[string]string, len(sub))
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = sub[i]
		}
	}
	return groups
}

// matchOtherStandalone implements the fourth, most permissive pattern. Its
// negative lookahead rules out a match when another two-digit number
// follows later in the string (which would indicate the episode number
// actually belongs to a different structure, e.g. a second season tag).
// Go's regexp package has no lookaround, so the name/episode split is
// walked by hand in the same left-to-right, shortest-name-first order a
// backtracking engine would try it.
func matchOtherStandalone(name string) (TVShow, bool) {
	for i := 1; i < len(name); i++ {
		if name[i] != ' ' {
			continue
		}
		prefix := name[:i]
		suffix := name[i+1:]

		sub := otherStandaloneSuffixRe.FindStringSubmatch(suffix)
		if sub == nil {
			continue
		}
		groups := make(map[string]string, len(sub))
		for j, n := range otherStandaloneSuffixRe.SubexpNames() {
			if n != "" {
				groups[n] = sub[j]
			}
		}

		if rest := groups["rest"]; rest != "" && otherStandaloneLookaheadRe.MatchString(rest) {
			continue
		}

		season := 1
		if s := groups["season"]; s != "" {
			season, _ = strconv.Atoi(s)
		}
		episode, _ := strconv.Atoi(groups["episode"])
		return TVShow{Name: prefix, Season: season, Episode: episode}, true
	}
	return TVShow{}, false
}
