package research

import "errors"

// Error kinds for the external inference/search boundary. All component
// failures wrap one of these so the controller can apply the right
// fallback with errors.Is.
var (
	// ErrGeneration means no initial query could be produced. Fatal for
	// the session after retries.
	ErrGeneration = errors.New("query generation failed")
	// ErrSearch means a search call failed. The session proceeds with
	// zero new results after retries.
	ErrSearch = errors.New("search failed")
	// ErrSummarization means the summary update failed. The previous
	// summary is kept unchanged.
	ErrSummarization = errors.New("summarization failed")
	// ErrReflection means gap analysis failed. Treated as "no gap found"
	// so the session terminates instead of looping on a bad signal.
	ErrReflection = errors.New("reflection failed")
)
