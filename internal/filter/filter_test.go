package filter

import (
	"errors"
	"reflect"
	"testing"

	"cfsubmissions/internal/codeforces"
	"cfsubmissions/internal/config"
	"cfsubmissions/internal/errx"
)

func testCatalog(t *testing.T) *config.Catalog {
	t.Helper()
	c, err := config.NewCatalog(
		[]config.Language{
			{Name: "GNU C++17", Code: "cpp17", Extension: "cpp"},
			{Name: "Python 3", Code: "py3", Extension: "py"},
			{Name: "PyPy 3-64", Code: "pypy3", Extension: "py"},
		},
		[]config.Verdict{
			{Name: "OK", Code: "ac"},
			{Name: "WRONG_ANSWER", Code: "wa"},
			{Name: "TIME_LIMIT_EXCEEDED", Code: "tle"},
		},
	)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return c
}

func sub(contestID int, verdict, lang string) codeforces.Submission {
	return codeforces.Submission{
		ID:                  int64(contestID*10 + 1),
		ContestID:           contestID,
		Verdict:             verdict,
		ProgrammingLanguage: lang,
		Problem:             codeforces.Problem{ContestID: contestID, Index: "A", Name: "P"},
	}
}

func TestFilter_ExcludesGymContests(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)
	filters := []Filter{
		{Catalog: cat, Verdicts: All(), Languages: All()},
		{Catalog: cat, Verdicts: Only("ac"), Languages: All()},
		{Catalog: cat, Verdicts: Only("ac", "wa"), Languages: Only("cpp17")},
	}
	for _, f := range filters {
		for _, id := range []int{GymContestThreshold, GymContestThreshold + 1, 102000} {
			s := sub(id, "OK", "GNU C++17")
			if f.Match(s) {
				t.Fatalf("Match(contest %d) = true under verdicts=%s languages=%s, want false", id, f.Verdicts, f.Languages)
			}
			if got := f.Check(s); got != ReasonGymContest {
				t.Fatalf("Check(contest %d) = %q, want %q", id, got, ReasonGymContest)
			}
		}
		if !f.Match(sub(GymContestThreshold-1, "OK", "GNU C++17")) {
			t.Fatalf("Match(contest %d) = false, want true", GymContestThreshold-1)
		}
	}
}

func TestFilter_ExcludesAcmSguru(t *testing.T) {
	t.Parallel()

	f := Filter{Catalog: testCatalog(t), Verdicts: All(), Languages: All()}
	s := sub(99999, "OK", "GNU C++17")
	s.Problem.ProblemsetName = AcmSguruProblemset
	if f.Match(s) {
		t.Fatalf("Match(acmsguru) = true, want false")
	}
	if got := f.Check(s); got != ReasonAcmSguru {
		t.Fatalf("Check(acmsguru) = %q, want %q", got, ReasonAcmSguru)
	}
}

func TestFilter_VerdictOnly_IgnoresLanguage(t *testing.T) {
	t.Parallel()

	f := Filter{Catalog: testCatalog(t), Verdicts: Only("ac"), Languages: All()}

	for _, lang := range []string{"GNU C++17", "Python 3", "Brainfuck"} {
		if !f.Match(sub(1, "OK", lang)) {
			t.Fatalf("Match(OK, %s) = false, want true", lang)
		}
		if !f.Match(sub(1, "ok", lang)) {
			t.Fatalf("Match(ok, %s) = false, want true (case-insensitive)", lang)
		}
		if f.Match(sub(1, "WRONG_ANSWER", lang)) {
			t.Fatalf("Match(WRONG_ANSWER, %s) = true, want false", lang)
		}
	}
}

func TestFilter_LanguageSelection(t *testing.T) {
	t.Parallel()

	f := Filter{Catalog: testCatalog(t), Verdicts: All(), Languages: Only("py3")}

	if !f.Match(sub(5, "WRONG_ANSWER", "Python 3")) {
		t.Fatalf("Match(Python 3) = false, want true")
	}
	if got := f.Check(sub(5, "OK", "GNU C++17")); got != ReasonLanguage {
		t.Fatalf("Check(GNU C++17) = %q, want %q", got, ReasonLanguage)
	}
	if got := f.Check(sub(5, "OK", "PyPy 3-64")); got != ReasonLanguage {
		t.Fatalf("Check(PyPy 3-64) = %q, want %q", got, ReasonLanguage)
	}
}

func TestFilter_UnknownRawValues(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)

	explicit := Filter{Catalog: cat, Verdicts: Only("ac"), Languages: Only("cpp17")}
	if got := explicit.Check(sub(1, "SOMETHING_NEW", "GNU C++17")); got != ReasonVerdict {
		t.Fatalf("Check(unknown verdict) = %q, want %q", got, ReasonVerdict)
	}
	if got := explicit.Check(sub(1, "", "GNU C++17")); got != ReasonVerdict {
		t.Fatalf("Check(missing verdict) = %q, want %q", got, ReasonVerdict)
	}
	if got := explicit.Check(sub(1, "OK", "Befunge")); got != ReasonLanguage {
		t.Fatalf("Check(unknown language) = %q, want %q", got, ReasonLanguage)
	}

	all := Filter{Catalog: cat, Verdicts: All(), Languages: All()}
	if !all.Match(sub(1, "SOMETHING_NEW", "Befunge")) {
		t.Fatalf("Match(unknown values) under all = false, want true")
	}
}

func TestNew_ResolvesCodes(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)

	f, err := New(cat, nil, nil)
	if err != nil {
		t.Fatalf("New(defaults) error = %v", err)
	}
	if f.Verdicts.IsAll() || !reflect.DeepEqual(f.Verdicts.Codes(), []string{"ac"}) {
		t.Fatalf("default verdicts = %s, want ac", f.Verdicts)
	}
	if !f.Languages.IsAll() {
		t.Fatalf("default languages = %s, want all", f.Languages)
	}

	f, err = New(cat, []string{"wa", "AC", "wa"}, []string{"py3", "cpp17"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := f.Verdicts.Codes(); !reflect.DeepEqual(got, []string{"ac", "wa"}) {
		t.Fatalf("verdicts = %v, want [ac wa]", got)
	}
	if got := f.Languages.Codes(); !reflect.DeepEqual(got, []string{"cpp17", "py3"}) {
		t.Fatalf("languages = %v, want [cpp17 py3]", got)
	}

	f, err = New(cat, []string{"ac", "all"}, []string{"all"})
	if err != nil {
		t.Fatalf("New(all) error = %v", err)
	}
	if !f.Verdicts.IsAll() || !f.Languages.IsAll() {
		t.Fatalf("New(all) = verdicts %s languages %s, want all/all", f.Verdicts, f.Languages)
	}
}

func TestNew_RejectsUnknownCodes(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)
	if _, err := New(cat, []string{"ac", "nope"}, nil); !errors.Is(err, errx.ErrUsage) {
		t.Fatalf("New(unknown verdict) error = %v, want ErrUsage", err)
	}
	if _, err := New(cat, nil, []string{"cobol"}); !errors.Is(err, errx.ErrUsage) {
		t.Fatalf("New(unknown language) error = %v, want ErrUsage", err)
	}
}

func TestFilter_VerdictDirs(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)

	f := Filter{Catalog: cat, Verdicts: All(), Languages: All()}
	if got, want := f.VerdictDirs(), []string{"ok", "wrong_answer", "time_limit_exceeded"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("VerdictDirs(all) = %v, want %v", got, want)
	}

	f = Filter{Catalog: cat, Verdicts: Only("tle", "ac"), Languages: All()}
	if got, want := f.VerdictDirs(), []string{"ok", "time_limit_exceeded"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("VerdictDirs(ac,tle) = %v, want %v", got, want)
	}
}
