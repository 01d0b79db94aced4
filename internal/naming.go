package internal

import (
	"regexp"
	"strings"
)

var (
	snakeWordBoundary  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	snakeLowerToUpper  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	snakeSpaceOrHyphen = strings.NewReplacer("-", "_", " ", "_")
)

// SnakeCase converts a CamelCase identifier to snake_case.
//
//	SnakeCase("SiteController") // "site_controller"
//	SnakeCase("HTTPServer")     // "http_server"
func SnakeCase(s string) string {
	if s == "" {
		return s
	}
	s = snakeSpaceOrHyphen.Replace(s)
	s = snakeWordBoundary.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(snakeLowerToUpper.ReplaceAllString(s, "${1}_${2}"))
}

// NormalizeModuleName strips one trailing ".bundle" segment, so a bundle
// declared in a file named bundle and one declared at package level resolve
// to the same module name. The function is idempotent for names that do not
// end in ".bundle".
func NormalizeModuleName(module string) string {
	if strings.HasSuffix(module, ".bundle") {
		return rightReplace(module, ".bundle", "")
	}
	return module
}

// rightReplace replaces the last occurrence of old in s.
func rightReplace(s, old, replacement string) string {
	i := strings.LastIndex(s, old)
	if i < 0 {
		return s
	}
	return s[:i] + replacement + s[i+len(old):]
}

// bundleName derives a bundle's name from its type name.
// The app bundle additionally drops its "Bundle" suffix.
func bundleName(typeName string, app bool) string {
	if app {
		return SnakeCase(rightReplace(typeName, "Bundle", ""))
	}
	return SnakeCase(typeName)
}

// lastSegment returns the part of a dotted module path after the final dot.
func lastSegment(module string) string {
	if i := strings.LastIndexByte(module, '.'); i >= 0 {
		return module[i+1:]
	}
	return module
}

// withinModule reports whether module is pkg itself or nested below it.
// Matching stops at dotted-path boundaries, so "shop" does not own "shopping".
func withinModule(module, pkg string) bool {
	if module == "" || pkg == "" {
		return false
	}
	return module == pkg || strings.HasPrefix(module, pkg+".")
}
