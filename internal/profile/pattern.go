package profile

import (
	"regexp"
	"sync"
)

var patternCache sync.Map // string -> *regexp.Regexp

// CompilePattern compiles a profile regex, caching the result.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}
