// Package report records the outcome of linting one or more data contracts.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/reoring/datacontract"
)

// Check results.
const (
	ResultPassed  = "passed"
	ResultWarning = "warning"
	ResultFailed  = datacontract.ResultFailed
	ResultError   = "error"
)

// CheckSyntaxValid is the name of the check recorded for a contract that
// resolved without error.
const CheckSyntaxValid = "Data contract is syntactically valid"

// Check is one check outcome.
type Check struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Result   string `json:"result"`
	Engine   string `json:"engine"`
	Reason   string `json:"reason,omitempty"`
	Location string `json:"location,omitempty"`
	Model    string `json:"model,omitempty"`
	Field    string `json:"field,omitempty"`
}

// Run groups the checks of one lint invocation.
type Run struct {
	RunID               string    `json:"runId"`
	DataContractID      string    `json:"dataContractId,omitempty"`
	DataContractVersion string    `json:"dataContractVersion,omitempty"`
	Result              string    `json:"result"`
	TimestampStart      time.Time `json:"timestampStart"`
	TimestampEnd        time.Time `json:"timestampEnd"`
	Checks              []Check   `json:"checks"`

	now func() time.Time
}

// NewRun starts a run stamped with a fresh id and the current time.
func NewRun() *Run {
	return newRun(time.Now)
}

func newRun(now func() time.Time) *Run {
	return &Run{
		RunID:          uuid.NewString(),
		TimestampStart: now().UTC(),
		Checks:         []Check{},
		now:            now,
	}
}

// Passed records a successful resolution of the contract at location.
func (r *Run) Passed(location string, spec *datacontract.Specification) {
	if spec != nil && r.DataContractID == "" {
		r.DataContractID = spec.ID()
		r.DataContractVersion = stringOf(spec.Info()["version"])
	}
	r.Checks = append(r.Checks, Check{
		Type:     datacontract.TypeLint,
		Name:     CheckSyntaxValid,
		Result:   ResultPassed,
		Engine:   datacontract.Engine,
		Location: location,
	})
}

// Failed records err for the contract at location. A *datacontract.Error keeps
// its type, name and reason; any other error is recorded as an error result.
func (r *Run) Failed(location string, err error) {
	if dcErr, ok := datacontract.AsError(err); ok {
		r.Checks = append(r.Checks, Check{
			Type:     dcErr.Type,
			Name:     dcErr.Name,
			Result:   dcErr.Result,
			Engine:   dcErr.Engine,
			Reason:   dcErr.Reason,
			Location: location,
		})
		return
	}
	r.Checks = append(r.Checks, Check{
		Type:     datacontract.TypeLint,
		Name:     datacontract.CheckYAMLValid,
		Result:   ResultError,
		Engine:   datacontract.Engine,
		Reason:   err.Error(),
		Location: location,
	})
}

// Finish stamps the end time and derives the overall result: the worst check
// result wins, and a run without checks has passed.
func (r *Run) Finish() {
	now := r.now
	if now == nil {
		now = time.Now
	}
	r.TimestampEnd = now().UTC()
	r.Result = ResultPassed
	for _, c := range r.Checks {
		if severity(c.Result) > severity(r.Result) {
			r.Result = c.Result
		}
	}
}

// HasPassed reports whether the finished run has no failing check.
func (r *Run) HasPassed() bool {
	return r.Result == ResultPassed || r.Result == ResultWarning
}

// Duration is the time between start and end.
func (r *Run) Duration() time.Duration {
	return r.TimestampEnd.Sub(r.TimestampStart)
}

func severity(result string) int {
	switch result {
	case ResultPassed:
		return 0
	case ResultWarning:
		return 1
	case ResultFailed:
		return 2
	default:
		return 3
	}
}

// WriteTable renders the checks as an aligned table followed by a summary.
func (r *Run) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RESULT\tCHECK\tLOCATION\tDETAILS")
	for _, c := range r.Checks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Result, c.Name, c.Location, oneLine(c.Reason))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if r.HasPassed() {
		_, err := fmt.Fprintf(w, "data contract is valid. Run %d checks. Took %.3f seconds.\n",
			len(r.Checks), r.Duration().Seconds())
		return err
	}
	if _, err := fmt.Fprintln(w, "data contract is invalid, found the following errors:"); err != nil {
		return err
	}
	i := 1
	for _, c := range r.Checks {
		if c.Result == ResultPassed {
			continue
		}
		if _, err := fmt.Fprintf(w, "%d) %s\n", i, c.Reason); err != nil {
			return err
		}
		i++
	}
	return nil
}

// WriteJSON writes the run as indented JSON.
func (r *Run) WriteJSON(w io.Writer) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}
