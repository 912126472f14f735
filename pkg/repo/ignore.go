package repo

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreFile is the per-repository ignore list at the work tree root.
const IgnoreFile = ".gitletignore"

// alwaysIgnored are never part of the managed file set, whatever the
// ignore file says.
var alwaysIgnored = []string{ControlDir, ".git"}

// IgnoreChecker decides which work tree paths are left out of status,
// checkout and merge scans.
//
// Rules follow the usual ignore-file conventions: '#' starts a comment,
// '!' negates, a trailing '/' restricts a rule to directories, and a rule
// containing '/' is matched against the whole path instead of a single
// name. '*' and '?' stay within one path segment; '**' crosses them. The
// last matching rule wins.
type IgnoreChecker struct {
	rules []ignoreRule
}

type ignoreRule struct {
	re       *regexp.Regexp
	negated  bool
	dirOnly  bool
	anchored bool
}

// NewIgnoreChecker loads the ignore file of the work tree rooted at
// repoRoot. A missing or unreadable file leaves only the built-in rules.
func NewIgnoreChecker(repoRoot string) *IgnoreChecker {
	ic := &IgnoreChecker{}
	f, err := os.Open(filepath.Join(repoRoot, IgnoreFile))
	if err != nil {
		return ic
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if rule, ok := parseIgnoreRule(sc.Text()); ok {
			ic.rules = append(ic.rules, rule)
		}
	}
	return ic
}

func parseIgnoreRule(line string) (ignoreRule, bool) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return ignoreRule{}, false
	}

	var rule ignoreRule
	if strings.HasPrefix(line, "!") {
		rule.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	rule.anchored = strings.Contains(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return ignoreRule{}, false
	}

	re, err := regexp.Compile(globToRegex(line))
	if err != nil {
		return ignoreRule{}, false
	}
	rule.re = re
	return rule, true
}

// IsIgnored reports whether the slash-separated, root-relative path is
// ignored. A path is also ignored when one of its parent directories is.
func (ic *IgnoreChecker) IsIgnored(path string) bool {
	path = filepath.ToSlash(path)
	for _, name := range alwaysIgnored {
		if path == name || strings.HasPrefix(path, name+"/") {
			return true
		}
	}

	ignored := false
	for _, rule := range ic.rules {
		if rule.matches(path) {
			ignored = !rule.negated
		}
	}
	return ignored
}

// matches tests path and each of its parent directories against the rule.
// Directory-only rules skip path itself, which always names a file.
func (r ignoreRule) matches(path string) bool {
	if !r.dirOnly && r.matchOne(path) {
		return true
	}
	for i := len(path) - 1; i > 0; i-- {
		if path[i] == '/' && r.matchOne(path[:i]) {
			return true
		}
	}
	return false
}

func (r ignoreRule) matchOne(path string) bool {
	if r.anchored {
		return r.re.MatchString(path)
	}
	return r.re.MatchString(path[strings.LastIndexByte(path, '/')+1:])
}

func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		switch ch := pattern[i]; ch {
		case '*':
			if strings.HasPrefix(pattern[i:], "**/") {
				b.WriteString("(?:.*/)?")
				i += 2
			} else if strings.HasPrefix(pattern[i:], "**") {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := pattern[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i += end + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	b.WriteString("$")
	return b.String()
}
