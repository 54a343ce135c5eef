package services

// ImportFinishedEvent is published once per import, whether it succeeded or not.
// Summary is nil when the file could not be read and partial when writing failed.
type ImportFinishedEvent struct {
	Summary *ImportSummary
	Err     error
}

func (e *ImportFinishedEvent) Succeeded() bool {
	return e.Err == nil
}
