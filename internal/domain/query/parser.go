// Package query parses filter_50 tokens into a record predicate and a
// comparator.
package query

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/maifilter/internal/domain/model"
)

// Difficulty suffix offsets. A display level like 12+ covers constants
// 12.7 to 12.9 and a bare 12 covers 12.0 to 12.6.
const (
	plusLowerOffset = 0.7
	plusUpperOffset = 0.9
	bareUpperOffset = 0.6
)

// Bare flag tokens.
const (
	tokenReverse = "rev"
	tokenFit     = "fit"
	tokenX50     = "x50"
)

// Query is the parsed form of a token list.
type Query struct {
	Predicate  Predicate
	Comparator Comparator
	// Fit replaces difficulty constants with fitted ones before filtering.
	Fit bool
	// X50 replaces the selection with repeats of the best record.
	X50 bool
}

// Match reports whether r passes the query predicate.
func (q *Query) Match(r *model.ChartRecord, c model.Catalog) bool {
	return q.Predicate.Match(r, c)
}

// String renders the query in a canonical token form.
func (q *Query) String() string {
	parts := make([]string, 0, len(q.Predicate)+3)
	for _, f := range q.Predicate {
		parts = append(parts, f.String())
	}
	parts = append(parts, q.Comparator.String())
	if q.Fit {
		parts = append(parts, tokenFit)
	}
	if q.X50 {
		parts = append(parts, tokenX50)
	}
	return strings.Join(parts, " ")
}

// rangeGrammar matches the equality and range forms of one prefix.
type rangeGrammar struct {
	eq  *regexp.Regexp
	rng *regexp.Regexp
}

func newRangeGrammar(prefix, value string) rangeGrammar {
	head := `^(?:` + prefix + `)[=＝]?`
	return rangeGrammar{
		eq:  regexp.MustCompile(head + `(` + value + `)$`),
		rng: regexp.MustCompile(head + `(` + value + `)?[-~～](` + value + `)?$`),
	}
}

// bounds splits token into its lower and upper bound texts. An empty text is
// a missing bound.
func (g rangeGrammar) bounds(token string) (lower, upper string, err error) {
	if m := g.eq.FindStringSubmatch(token); m != nil {
		return m[1], m[1], nil
	}
	if m := g.rng.FindStringSubmatch(token); m != nil {
		return m[1], m[2], nil
	}
	return "", "", parseError(ReasonMalformed, token)
}

//nolint:gochecknoglobals // compiled grammar
var (
	diffGrammar  = newRangeGrammar(`diff|ds`, `\d+(?:\.\d|\+)?`)
	starGrammar  = newRangeGrammar(`star`, `[0-5]`)
	achvGrammar  = newRangeGrammar(`achv`, `\d+(?:\.\d*)?`)
	levelGrammar = newRangeGrammar(`lv`, `[绿黄红紫白]`)

	cmpPattern = regexp.MustCompile(`^([a-z0-9]+)(?:/([a-z0-9]+))?$`)
)

func isListSeparator(r rune) bool {
	switch r {
	case '+', ',', ';', '＋', '，', '；':
		return true
	}
	return false
}

// Parse turns tokens into a Query. Tokens are lower-cased before matching.
// The catalog is only consulted to resolve alias names.
func Parse(tokens []string, c model.Catalog) (*Query, error) {
	q := &Query{Comparator: DefaultComparator()}
	reverse := false
	for _, raw := range tokens {
		token := strings.ToLower(strings.TrimSpace(raw))
		if token == "" {
			continue
		}
		var (
			f   Filter
			err error
		)
		switch {
		case strings.HasPrefix(token, "diff"), strings.HasPrefix(token, "ds"):
			f, err = parseDifficulty(token)
		case strings.HasPrefix(token, "star"):
			f, err = parseStar(token)
		case strings.HasPrefix(token, "achv"):
			f, err = parseAchievement(token)
		case strings.HasPrefix(token, "lv"):
			f, err = parseLevel(token)
		case strings.HasPrefix(token, "cat"):
			f, err = parseCategories(token)
		case strings.HasPrefix(token, "alias"):
			f, err = parseAlias(token, c)
		case strings.HasPrefix(token, "cmp"):
			q.Comparator, err = parseComparator(token)
		case token == tokenReverse:
			reverse = true
		case token == tokenFit:
			q.Fit = true
		case token == tokenX50:
			q.X50 = true
		default:
			err = parseError(ReasonUnknownArgument, token)
		}
		if err != nil {
			return nil, err
		}
		if f != nil {
			q.Predicate = append(q.Predicate, f)
		}
	}
	q.Comparator.Reverse = reverse
	return q, nil
}

func parseDifficulty(token string) (Filter, error) {
	lo, hi, err := diffGrammar.bounds(token)
	if err != nil {
		return nil, err
	}
	var r Range[float64]
	if lo != "" {
		offset := 0.0
		if strings.HasSuffix(lo, "+") {
			lo, offset = strings.TrimSuffix(lo, "+"), plusLowerOffset
		}
		v, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return nil, parseError(ReasonMalformed, token)
		}
		r.Lower, r.HasLower = v+offset, true
	}
	if hi != "" {
		offset := 0.0
		switch {
		case strings.HasSuffix(hi, "+"):
			hi, offset = strings.TrimSuffix(hi, "+"), plusUpperOffset
		case !strings.Contains(hi, "."):
			offset = bareUpperOffset
		}
		v, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return nil, parseError(ReasonMalformed, token)
		}
		r.Upper, r.HasUpper = v+offset, true
	}
	return DifficultyRange{r}, nil
}

func parseStar(token string) (Filter, error) {
	r, err := intRange(starGrammar, token, strconv.Atoi)
	if err != nil {
		return nil, err
	}
	return StarRange{r}, nil
}

func parseAchievement(token string) (Filter, error) {
	lo, hi, err := achvGrammar.bounds(token)
	if err != nil {
		return nil, err
	}
	var r Range[float64]
	if lo != "" {
		if r.Lower, err = strconv.ParseFloat(lo, 64); err != nil {
			return nil, parseError(ReasonMalformed, token)
		}
		r.HasLower = true
	}
	if hi != "" {
		if r.Upper, err = strconv.ParseFloat(hi, 64); err != nil {
			return nil, parseError(ReasonMalformed, token)
		}
		r.HasUpper = true
	}
	return AchievementRange{r}, nil
}

func parseLevel(token string) (Filter, error) {
	r, err := intRange(levelGrammar, token, func(s string) (int, error) {
		return slices.Index(model.LevelLabels, s), nil
	})
	if err != nil {
		return nil, err
	}
	return LevelRange{r}, nil
}

func intRange(g rangeGrammar, token string, conv func(string) (int, error)) (Range[int], error) {
	var r Range[int]
	lo, hi, err := g.bounds(token)
	if err != nil {
		return r, err
	}
	if lo != "" {
		if r.Lower, err = conv(lo); err != nil || r.Lower < 0 {
			return r, parseError(ReasonMalformed, token)
		}
		r.HasLower = true
	}
	if hi != "" {
		if r.Upper, err = conv(hi); err != nil || r.Upper < 0 {
			return r, parseError(ReasonMalformed, token)
		}
		r.HasUpper = true
	}
	return r, nil
}

// listItems strips prefix and an optional = and splits the rest on any list
// separator.
func listItems(token, prefix string) []string {
	rest := strings.TrimPrefix(token, prefix)
	rest = strings.TrimPrefix(rest, "=")
	rest = strings.TrimPrefix(rest, "＝")
	return strings.FieldsFunc(rest, isListSeparator)
}

func parseCategories(token string) (Filter, error) {
	items := listItems(token, "cat")
	if len(items) == 0 {
		return nil, parseError(ReasonMalformed, token)
	}
	set := CategorySet{Categories: make([]Category, 0, len(items))}
	for _, item := range items {
		cat, ok := ParseCategory(item)
		if !ok {
			return nil, parseError(ReasonUnknownCategory, item)
		}
		if !slices.Contains(set.Categories, cat) {
			set.Categories = append(set.Categories, cat)
		}
	}
	return set, nil
}

func parseAlias(token string, c model.Catalog) (Filter, error) {
	items := listItems(token, "alias")
	if len(items) == 0 {
		return nil, parseError(ReasonMalformed, token)
	}
	var ids []int
	for _, name := range items {
		var resolved []int
		if c != nil {
			resolved = c.ResolveAlias(name)
		}
		if len(resolved) == 0 {
			return nil, parseError(ReasonUnknownAlias, name)
		}
		ids = append(ids, resolved...)
	}
	return NewAliasGroup(ids...), nil
}

func parseComparator(token string) (Comparator, error) {
	spec := strings.TrimPrefix(token, "cmp")
	spec = strings.TrimPrefix(spec, "=")
	spec = strings.TrimPrefix(spec, "＝")
	m := cmpPattern.FindStringSubmatch(spec)
	if m == nil {
		return Comparator{}, parseError(ReasonUnknownComparator, token)
	}
	num, ok := ParseAttr(m[1])
	if !ok {
		return Comparator{}, parseError(ReasonUnknownComparator, token)
	}
	den := AttrOne
	if m[2] != "" {
		if den, ok = ParseAttr(m[2]); !ok {
			return Comparator{}, parseError(ReasonUnknownComparator, token)
		}
	}
	return Comparator{Num: num, Den: den}, nil
}
