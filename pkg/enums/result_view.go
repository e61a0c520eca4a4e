package enums

import "fmt"

// ResultView is the single view the payment result screen presents.
type ResultView string

const (
	ResultViewLoading ResultView = "loading"
	ResultViewSuccess ResultView = "success"
	ResultViewFailed  ResultView = "failed"
)

var validResultViews = []ResultView{
	ResultViewLoading,
	ResultViewSuccess,
	ResultViewFailed,
}

// String implements fmt.Stringer.
func (r ResultView) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ResultView.
func (r ResultView) IsValid() bool {
	for _, candidate := range validResultViews {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseResultView converts raw input into a ResultView.
func ParseResultView(value string) (ResultView, error) {
	for _, candidate := range validResultViews {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid result view %q", value)
}
