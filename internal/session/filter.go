package session

import (
	"regexp"
	"strings"

	"github.com/yarkm13/ftpsh/internal/errors"
)

// Filter selects which remote files a directory download transfers.
// A nil Filter matches every name.
type Filter interface {
	Match(name string) bool
	String() string
}

type regexFilter struct {
	re *regexp.Regexp
}

// NewFilter compiles a regular expression filter. The pattern may be
// written bare (\.csv$) or slash-delimited (/\.csv$/). An empty pattern
// yields a nil Filter.
func NewFilter(pattern string) (Filter, error) {
	if pattern == "" {
		return nil, nil
	}
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		pattern = pattern[1 : len(pattern)-1]
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrUsage,
			"Invalid filter pattern: "+pattern,
			"Filters are regular expressions, e.g. '\\.csv$'")
	}
	return &regexFilter{re: re}, nil
}

func (f *regexFilter) Match(name string) bool { return f.re.MatchString(name) }
func (f *regexFilter) String() string         { return "/" + f.re.String() + "/" }

func matches(f Filter, name string) bool {
	return f == nil || f.Match(name)
}
