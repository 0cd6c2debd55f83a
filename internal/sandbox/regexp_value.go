package sandbox

import (
	"fmt"
	"regexp"
	"strings"
)

// compileJSRegex best-effort translates a JS regex pattern/flags pair
// into a Go regexp.Regexp. JS and RE2 syntax agree closely enough for
// the character classes and quantifiers obfuscated code actually uses;
// patterns that lean on backreferences or lookaround (which RE2 can't
// represent) fail to compile here, and the resulting Regexp value
// carries a nil Compiled rather than the sandbox refusing the literal
// outright.
func compileJSRegex(pattern, flags string) *regexp.Regexp {
	var sb strings.Builder
	for _, f := range flags {
		switch f {
		case 'i':
			sb.WriteString("i")
		case 's':
			sb.WriteString("s")
		case 'm':
			sb.WriteString("m")
		}
	}
	src := pattern
	if sb.Len() > 0 {
		src = "(?" + sb.String() + ")" + pattern
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil
	}
	return re
}

func newRegexpValue(pattern, flags string) *Regexp {
	return &Regexp{Pattern: pattern, Flags: flags, Compiled: compileJSRegex(pattern, flags)}
}

// regexMethod implements the pure RegExp.prototype methods obfuscated
// guards and validators use: test (boolean) and exec (the match array,
// or null). Both require Compiled — a pattern RE2 couldn't translate
// answers ErrUnsupported rather than guessing.
func regexMethod(r *Regexp, name string, args []any) (any, error) {
	if r.Compiled == nil {
		return nil, fmt.Errorf("%w: RegExp pattern %q is outside RE2's subset", ErrUnsupported, r.Pattern)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: RegExp.prototype.%s with no subject", ErrUnsupported, name)
	}
	subject := toJSString(args[0])

	switch name {
	case "test":
		return r.Compiled.MatchString(subject), nil
	case "exec":
		m := r.Compiled.FindStringSubmatch(subject)
		if m == nil {
			return nil, nil
		}
		out := make([]any, len(m))
		for i, g := range m {
			out[i] = g
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: RegExp.prototype.%s", ErrUnsupported, name)
}

// stringMatchesRegex implements String.prototype methods that take a
// RegExp argument instead of a plain string (match, replace with a
// RegExp pattern) — kept separate from callStringMethod's plain-string
// table since it needs the second receiver type.
func stringMatchesRegex(s string, name string, re *Regexp, rest []any) (any, bool, error) {
	if re.Compiled == nil {
		return nil, true, fmt.Errorf("%w: RegExp pattern %q is outside RE2's subset", ErrUnsupported, re.Pattern)
	}
	switch name {
	case "match":
		if strings.Contains(re.Flags, "g") {
			all := re.Compiled.FindAllString(s, -1)
			if all == nil {
				return nil, nil, nil
			}
			out := make([]any, len(all))
			for i, m := range all {
				out[i] = m
			}
			return out, true, nil
		}
		m := re.Compiled.FindStringSubmatch(s)
		if m == nil {
			return nil, true, nil
		}
		out := make([]any, len(m))
		for i, g := range m {
			out[i] = g
		}
		return out, true, nil
	case "replace":
		if len(rest) == 0 {
			return nil, true, fmt.Errorf("%w: replace with no replacement", ErrUnsupported)
		}
		repl, ok := rest[0].(string)
		if !ok {
			return nil, true, fmt.Errorf("%w: replace with a non-string replacement", ErrUnsupported)
		}
		goRepl := regexp.MustCompile(`\$(\d)`).ReplaceAllString(repl, `$$${1}`)
		if strings.Contains(re.Flags, "g") {
			return re.Compiled.ReplaceAllString(s, goRepl), true, nil
		}
		loc := re.Compiled.FindStringIndex(s)
		if loc == nil {
			return s, true, nil
		}
		one := re.Compiled.ReplaceAllString(s[loc[0]:loc[1]], goRepl)
		return s[:loc[0]] + one + s[loc[1]:], true, nil
	}
	return nil, false, nil
}
