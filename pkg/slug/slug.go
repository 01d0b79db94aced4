package slug

import (
	"crypto/rand"
	"math/big"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	defaultSeparator    = "-"
	defaultReservedSize = 6
	suffixAlphabet      = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Letters that do not decompose into a base letter plus combining marks.
var specialLetters = map[rune]string{
	'ß': "ss", 'ẞ': "SS",
	'ł': "l", 'Ł': "L",
	'đ': "d", 'Đ': "D",
	'ø': "o", 'Ø': "O",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'þ': "th", 'Þ': "TH",
}

type config struct {
	separator  string
	maxLength  int
	minLength  int
	suffixLen  int
	lowercase  bool
	stripChars string
	replace    map[string]string
	reserved   []string
}

// Option configures slug generation.
type Option func(*config)

// MaxLength limits the slug to n runes, suffix included. Zero means no limit.
func MaxLength(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxLength = n
		}
	}
}

// MinLength pads slugs shorter than n runes with a random suffix.
func MinLength(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minLength = n
		}
	}
}

// Separator sets the string placed between words. Defaults to "-".
func Separator(sep string) Option {
	return func(c *config) {
		c.separator = sep
	}
}

// Lowercase controls case folding. Enabled by default.
func Lowercase(enabled bool) Option {
	return func(c *config) {
		c.lowercase = enabled
	}
}

// StripChars removes every listed character before slugification.
func StripChars(chars string) Option {
	return func(c *config) {
		c.stripChars += chars
	}
}

// CustomReplace applies string replacements before slugification.
// Longer keys are replaced first.
func CustomReplace(replacements map[string]string) Option {
	return func(c *config) {
		if c.replace == nil {
			c.replace = make(map[string]string, len(replacements))
		}
		for k, v := range replacements {
			c.replace[k] = v
		}
	}
}

// WithSuffix appends a random alphanumeric suffix of n characters.
func WithSuffix(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.suffixLen = n
		}
	}
}

// ReservedSlugs makes Make append a random suffix to slugs equal (case-insensitively) to any of names.
func ReservedSlugs(names ...string) Option {
	return func(c *config) {
		c.reserved = append(c.reserved, names...)
	}
}

// Make converts s into a URL-safe slug.
func Make(s string, opts ...Option) string {
	cfg := &config{separator: defaultSeparator, lowercase: true}
	for _, opt := range opts {
		opt(cfg)
	}

	s = applyReplacements(s, cfg.replace)
	if cfg.stripChars != "" {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(cfg.stripChars, r) {
				return -1
			}
			return r
		}, s)
	}

	result := words(fold(s), cfg)

	suffixLen := cfg.suffixLen
	if suffixLen == 0 && result != "" && isReserved(result, cfg.reserved) {
		suffixLen = defaultReservedSize
	}
	if pad := cfg.minLength - runeLen(result); suffixLen == 0 && pad > 0 {
		suffixLen = pad
		if result != "" {
			suffixLen -= runeLen(cfg.separator)
		}
		suffixLen = max(suffixLen, 1)
	}

	if suffixLen == 0 {
		return truncate(result, cfg.maxLength, cfg.separator)
	}

	suffix := randomSuffix(suffixLen)
	if result == "" {
		return suffix
	}
	if cfg.maxLength > 0 {
		room := cfg.maxLength - runeLen(suffix) - runeLen(cfg.separator)
		if room <= 0 {
			return truncate(suffix, cfg.maxLength, cfg.separator)
		}
		result = truncate(result, room, cfg.separator)
	}
	return result + cfg.separator + suffix
}

// fold strips diacritics and maps letters without a decomposition to ASCII.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	var b strings.Builder
	b.Grow(len(out))
	for _, r := range out {
		if repl, ok := specialLetters[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// words keeps ASCII letters and digits and collapses every other run into one separator.
func words(s string, cfg *config) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pending && b.Len() > 0 {
				b.WriteString(cfg.separator)
			}
			pending = false
			if cfg.lowercase {
				r = unicode.ToLower(r)
			}
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

func applyReplacements(s string, replace map[string]string) string {
	if len(replace) == 0 {
		return s
	}
	keys := make([]string, 0, len(replace))
	for k := range replace {
		if k != "" {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		if d := len(b) - len(a); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, " "+replace[k]+" ")
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// truncate cuts s to n runes and drops a dangling separator.
func truncate(s string, n int, sep string) string {
	if n <= 0 || runeLen(s) <= n {
		return s
	}
	r := []rune(s)
	out := string(r[:n])
	if sep != "" {
		out = strings.TrimSuffix(out, sep)
	}
	return out
}

func isReserved(s string, reserved []string) bool {
	for _, r := range reserved {
		if strings.EqualFold(s, r) {
			return true
		}
	}
	return false
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	limit := big.NewInt(int64(len(suffixAlphabet)))
	for i := range b {
		v, err := rand.Int(rand.Reader, limit)
		if err != nil {
			b[i] = suffixAlphabet[i%len(suffixAlphabet)]
			continue
		}
		b[i] = suffixAlphabet[v.Int64()]
	}
	return string(b)
}

func runeLen(s string) int {
	return len([]rune(s))
}
