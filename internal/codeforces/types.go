package codeforces

// Submission mirrors the fields this tool needs from a user.status result entry.
type Submission struct {
	ID int64 `json:"id"`

	// ContestID is absent for some problemset-only submissions; it decodes as 0.
	ContestID int `json:"contestId"`

	// Verdict is the raw judge verdict (e.g. "OK", "WRONG_ANSWER").
	// It is empty while the submission is still queued.
	Verdict string `json:"verdict"`

	// ProgrammingLanguage is the raw judge language name (e.g. "GNU C++17").
	ProgrammingLanguage string `json:"programmingLanguage"`

	Problem Problem `json:"problem"`
}

type Problem struct {
	ContestID int    `json:"contestId"`
	Index     string `json:"index"`
	Name      string `json:"name"`

	// ProblemsetName is set for problems that live outside regular contests
	// (e.g. "acmsguru").
	ProblemsetName string `json:"problemsetName,omitempty"`
}

// apiResponse is the envelope every API method returns.
type apiResponse[T any] struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  T      `json:"result"`
}
