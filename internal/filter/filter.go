package filter

import (
	"sort"
	"strings"

	"cfsubmissions/internal/codeforces"
	"cfsubmissions/internal/config"
	"cfsubmissions/internal/errx"
)

const (
	// GymContestThreshold is the first contest id reserved for gym/practice contests.
	GymContestThreshold = 100001

	// AcmSguruProblemset names the problemset partition this tool does not support.
	AcmSguruProblemset = "acmsguru"
)

// Selection is either "match all" or an explicit set of canonical codes.
type Selection struct {
	all   bool
	codes []string
}

// All matches every code.
func All() Selection { return Selection{all: true} }

// Only matches the given codes. Codes are lower-cased, de-duplicated and sorted.
func Only(codes ...string) Selection {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return Selection{codes: out}
}

func (s Selection) IsAll() bool { return s.all }

// Codes returns the explicit codes; it is nil for All().
func (s Selection) Codes() []string { return append([]string(nil), s.codes...) }

// Contains reports whether code is selected.
func (s Selection) Contains(code string) bool {
	if s.all {
		return true
	}
	code = strings.ToLower(code)
	i := sort.SearchStrings(s.codes, code)
	return i < len(s.codes) && s.codes[i] == code
}

func (s Selection) String() string {
	if s.all {
		return config.All
	}
	return strings.Join(s.codes, ",")
}

// Reason says why Match rejected a submission.
type Reason string

const (
	Included         Reason = ""
	ReasonAcmSguru   Reason = "acmsguru problemset"
	ReasonGymContest Reason = "gym contest"
	ReasonVerdict    Reason = "verdict not selected"
	ReasonLanguage   Reason = "language not selected"
)

// Filter decides which submissions are kept.
//
// Raw judge values missing from the catalog never match an explicit
// selection, but they do match All().
type Filter struct {
	Catalog   *config.Catalog
	Verdicts  Selection
	Languages Selection
}

// New resolves user-supplied verdict and language codes against the catalog.
// "all" anywhere in a list selects everything; an empty list selects the
// defaults (verdict "ac", every language). Unknown codes are usage errors.
func New(cat *config.Catalog, verdicts, languages []string) (Filter, error) {
	vs, err := resolve(verdicts, []string{"ac"}, func(code string) bool {
		_, ok := cat.VerdictByCode(code)
		return ok
	}, "verdict", cat.VerdictCodes())
	if err != nil {
		return Filter{}, err
	}
	ls, err := resolve(languages, []string{config.All}, cat.HasLanguageCode, "language", cat.LanguageCodes())
	if err != nil {
		return Filter{}, err
	}
	return Filter{Catalog: cat, Verdicts: vs, Languages: ls}, nil
}

func resolve(codes, defaults []string, known func(string) bool, kind string, choices []string) (Selection, error) {
	if len(codes) == 0 {
		codes = defaults
	}
	var picked []string
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if c == config.All {
			return All(), nil
		}
		if !known(c) {
			return Selection{}, errx.Usage("argument -%c/--%s: invalid choice: %q (choose from %s, %s)",
				kind[0], kind, c, config.All, strings.Join(choices, ", "))
		}
		picked = append(picked, c)
	}
	if len(picked) == 0 {
		return Selection{}, errx.Usage("argument -%c/--%s: expected at least one code", kind[0], kind)
	}
	return Only(picked...), nil
}

// Match reports whether s should be fetched and written.
func (f Filter) Match(s codeforces.Submission) bool {
	return f.Check(s) == Included
}

// Check is Match with the reason for rejection.
func (f Filter) Check(s codeforces.Submission) Reason {
	if s.Problem.ProblemsetName == AcmSguruProblemset {
		return ReasonAcmSguru
	}
	if s.ContestID >= GymContestThreshold {
		return ReasonGymContest
	}
	if !f.Verdicts.IsAll() {
		code, ok := f.Catalog.VerdictCode(s.Verdict)
		if !ok || !f.Verdicts.Contains(code) {
			return ReasonVerdict
		}
	}
	if !f.Languages.IsAll() {
		code, ok := f.Catalog.LanguageCode(s.ProgrammingLanguage)
		if !ok || !f.Languages.Contains(code) {
			return ReasonLanguage
		}
	}
	return Included
}

// VerdictDirs lists the output subdirectories to create before any
// submission is written: one per catalog verdict for All(), otherwise one per
// selected verdict.
func (f Filter) VerdictDirs() []string {
	var dirs []string
	if f.Verdicts.IsAll() {
		for _, v := range f.Catalog.Verdicts() {
			dirs = append(dirs, v.Dir())
		}
		return dirs
	}
	for _, code := range f.Verdicts.Codes() {
		if v, ok := f.Catalog.VerdictByCode(code); ok {
			dirs = append(dirs, v.Dir())
		}
	}
	return dirs
}
