package puzzle

import (
	"fmt"
	"strings"
	"time"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/logging"
)

// SubmitResult reports the outcome of one solution submission. The correct
// solution is never included.
type SubmitResult struct {
	Correct  bool   `json:"correct"`
	Attempts int    `json:"attempts"`
	Message  string `json:"message"`
}

// Judge evaluates solution submissions against an encounter's active puzzle.
type Judge struct {
	logger logging.Logger
}

// NewJudge creates a judge.
func NewJudge(optFns ...func(j *Judge)) *Judge {
	j := &Judge{logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(j)
	}
	return j
}

// WithJudgeLogger sets the judge logger.
func WithJudgeLogger(l logging.Logger) func(j *Judge) {
	return func(j *Judge) { j.logger = l }
}

// Submit judges answer against the encounter's puzzle. A correct answer
// transitions puzzle to battle and stamps the solved timestamp exactly once;
// an incorrect one increments the attempt count and returns a generic retry
// message. Submissions outside the puzzle phase fail with ErrNotAccessible,
// so re-submitting after the transition cannot re-award anything.
func (j *Judge) Submit(enc *core.EncounterState, answer string) (SubmitResult, error) {
	if enc.Phase != core.PhasePuzzle || enc.Puzzle == nil {
		return SubmitResult{}, fmt.Errorf("%w: no puzzle awaiting a solution for %s", core.ErrNotAccessible, enc.Oracle)
	}
	st := enc.Puzzle
	if st.Solved() {
		return SubmitResult{}, fmt.Errorf("%w: puzzle already solved", core.ErrNotAccessible)
	}

	st.Attempts++
	st.LastAnswer = answer

	if normalize(answer) == normalize(st.Solution) {
		now := time.Now().UTC()
		st.SolvedAt = &now
		enc.Phase = core.PhaseBattle
		j.logger.Info("puzzle solved", "oracle", enc.Oracle, "attempts", st.Attempts)
		return SubmitResult{
			Correct:  true,
			Attempts: st.Attempts,
			Message:  fmt.Sprintf("The trial of %s yields. Prepare for battle.", enc.Oracle),
		}, nil
	}

	j.logger.Debug("incorrect solution", "oracle", enc.Oracle, "attempts", st.Attempts)
	return SubmitResult{
		Correct:  false,
		Attempts: st.Attempts,
		Message:  fmt.Sprintf("The answer is not accepted. Attempts so far: %d.", st.Attempts),
	}, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
