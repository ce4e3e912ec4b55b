package recycling

// OutcomeKind tells which branch an analysis took.
type OutcomeKind string

const (
	OutcomeSuccess  OutcomeKind = "success"
	OutcomeFallback OutcomeKind = "fallback"
)

// Outcome is the result of one analysis. Both variants carry a complete
// AnalysisResult; only the fallback variant carries a Cause.
type Outcome struct {
	Kind   OutcomeKind
	Result AnalysisResult
	Cause  error
}

// Succeeded wraps a decoded result.
func Succeeded(r AnalysisResult) Outcome {
	return Outcome{Kind: OutcomeSuccess, Result: r}
}

// FellBack builds the fallback variant for imagePath.
func FellBack(imagePath string, cause error) Outcome {
	return Outcome{
		Kind:   OutcomeFallback,
		Result: FallbackResult(imagePath, cause),
		Cause:  cause,
	}
}

// Fallback reports whether the placeholder verdict was returned.
func (o Outcome) Fallback() bool { return o.Kind == OutcomeFallback }
