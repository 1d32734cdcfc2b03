package step

import (
	"fmt"
)

// Result is what executing a step concluded.
type Result int

const (
	// Applied means the step was not satisfied, Apply ran and the
	// postcondition now holds.
	Applied Result = iota
	// SkippedAlreadySatisfied means the probed state already satisfied the
	// step, so Apply was never called. This is a success, not a failure.
	SkippedAlreadySatisfied
	// Failed means probing, applying or the postcondition re-probe failed.
	Failed
)

var resultStrMap = map[Result]string{
	Applied:                 "Applied",
	SkippedAlreadySatisfied: "SkippedAlreadySatisfied",
	Failed:                  "Failed",
}

func (r Result) String() string {
	str, ok := resultStrMap[r]
	if !ok {
		panic(fmt.Errorf("invalid result %d", r))
	}
	return str
}

var resultEmojiMap = map[Result]string{
	Applied:                 "🔧",
	SkippedAlreadySatisfied: "✅",
	Failed:                  "💥",
}

// Emoji representing the result.
func (r Result) Emoji() string {
	emoji, ok := resultEmojiMap[r]
	if !ok {
		panic(fmt.Errorf("invalid result %d", r))
	}
	return emoji
}

// Outcome is the per-step result of a plan run.
type Outcome struct {
	// StepName is the full step name in TypeName:id format.
	StepName string
	// Result is what executing the step concluded.
	Result Result
	// Err is the failure cause when Result is Failed, nil otherwise.
	Err error
}

func (o *Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s %s: %s: %s", o.Result.Emoji(), o.StepName, o.Result, o.Err)
	}
	return fmt.Sprintf("%s %s: %s", o.Result.Emoji(), o.StepName, o.Result)
}
