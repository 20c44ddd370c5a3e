package executor

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultArgumentPattern is the allowlist used by ValidateArgument when no
// pattern is supplied: letters, digits and _ . / -
const DefaultArgumentPattern = `[A-Za-z0-9_./-]+`

var defaultArgumentRE = regexp.MustCompile(`^(?:` + DefaultArgumentPattern + `)$`)

// CompileArgumentPattern compiles an allowlist pattern. The pattern is
// anchored so it must match the whole argument.
func CompileArgumentPattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return defaultArgumentRE, nil
	}
	pattern = strings.TrimSuffix(strings.TrimPrefix(pattern, "^"), "$")
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compile argument pattern: %w", err)
	}
	return re, nil
}

// ValidateArgument returns arg unchanged when it matches re (the default
// allowlist if re is nil), and an *InvalidArgumentError otherwise. Empty
// arguments never match.
func ValidateArgument(arg string, re *regexp.Regexp) (string, error) {
	if re == nil {
		re = defaultArgumentRE
	}
	if arg == "" || !re.MatchString(arg) {
		return "", &InvalidArgumentError{Arg: arg, Pattern: re.String()}
	}
	return arg, nil
}

// ValidateArguments validates every element of args, stopping at the first
// failure.
func ValidateArguments(args []string, re *regexp.Regexp) error {
	for _, arg := range args {
		if _, err := ValidateArgument(arg, re); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCommand checks that args can be passed to the OS literally.
func ValidateCommand(args []string) error {
	if len(args) == 0 {
		return &InvalidCommandError{Reason: "empty argument list"}
	}
	if args[0] == "" {
		return &InvalidCommandError{Reason: "empty executable name"}
	}
	for i, arg := range args {
		if strings.ContainsRune(arg, 0) {
			return &InvalidCommandError{Reason: fmt.Sprintf("argument %d contains a NUL byte", i)}
		}
	}
	return nil
}

// QuoteForShell quotes value for literal inclusion in a POSIX shell command
// line. The result is always single-quoted; an embedded single quote ends
// the quoted span and is emitted backslash-escaped before quoting resumes.
func QuoteForShell(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// QuoteArgs quotes each argument and joins them with spaces, for display.
func QuoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if arg != "" && defaultArgumentRE.MatchString(arg) {
			quoted[i] = arg
			continue
		}
		quoted[i] = QuoteForShell(arg)
	}
	return strings.Join(quoted, " ")
}
