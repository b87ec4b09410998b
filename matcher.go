package restcore

import "strings"

// Matcher decides whether a handler should claim a request based on its
// shape. Matchers are cheap to evaluate compared to routing resolution.
type Matcher interface {
	Match(r *Request) bool
}

// MatcherFunc adapts a function to a Matcher.
type MatcherFunc func(r *Request) bool

func (f MatcherFunc) Match(r *Request) bool { return f(r) }

// PathIs returns a Matcher that matches when the request path equals path
// exactly.
func PathIs(path string) Matcher {
	return pathIs{path: path}
}

type pathIs struct {
	path string
}

func (m pathIs) Match(r *Request) bool {
	return r.Path == m.path
}

// PathPrefix returns a Matcher that matches when the request path starts
// with prefix.
func PathPrefix(prefix string) Matcher {
	return pathPrefix{prefix: prefix}
}

type pathPrefix struct {
	prefix string
}

func (m pathPrefix) Match(r *Request) bool {
	return strings.HasPrefix(r.Path, m.prefix)
}

// MethodIs returns a Matcher that matches when the request verb equals
// method.
func MethodIs(method string) Matcher {
	return methodIs{method: method}
}

type methodIs struct {
	method string
}

func (m methodIs) Match(r *Request) bool {
	return r.Method == m.method
}

// And returns a Matcher that matches when all matchers match.
func And(ms ...Matcher) Matcher {
	return and{ms: ms}
}

type and struct {
	ms []Matcher
}

func (m and) Match(r *Request) bool {
	for _, sub := range m.ms {
		if !sub.Match(r) {
			return false
		}
	}
	return true
}

// Or returns a Matcher that matches when any matcher matches.
func Or(ms ...Matcher) Matcher {
	return or{ms: ms}
}

type or struct {
	ms []Matcher
}

func (m or) Match(r *Request) bool {
	for _, sub := range m.ms {
		if sub.Match(r) {
			return true
		}
	}
	return false
}
