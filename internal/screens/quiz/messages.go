package quiz

// newQuizDoneMsg is sent when regeneration from the stored pages finishes.
type newQuizDoneMsg struct {
	Err error
}

// Menu actions on the results view.
type (
	retryMsg   struct{}
	newQuizMsg struct{}
	resetMsg   struct{}
)
