package reporting

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/autextification/scorer/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one subtask/language evaluation.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Timestamp  string          `xml:"timestamp,attr,omitempty"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one team run.
type JUnitTestCase struct {
	XMLName   xml.Name        `xml:"testcase"`
	Name      string          `xml:"name,attr"`
	Classname string          `xml:"classname,attr"`
	Error     *JUnitError     `xml:"error,omitempty"`
	Skipped   *JUnitSkipped   `xml:"skipped,omitempty"`
	Props     []JUnitProperty `xml:"properties>property,omitempty"`
	SystemOut string          `xml:"system-out,omitempty"`
}

// JUnitError represents a run that could not be read.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a run that failed validation.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a leaderboard to JUnit XML form. Scored runs are
// passing test cases, runs rejected by validation are skipped and runs that
// could not be parsed are errors.
func ConvertToJUnit(board *Leaderboard) *JUnitTestSuites {
	suite := JUnitTestSuite{
		Name: fmt.Sprintf("%s/%s", board.Subtask, board.Language),
		Properties: []JUnitProperty{
			{Name: "subtask", Value: string(board.Subtask)},
			{Name: "language", Value: string(board.Language)},
			{Name: "scored", Value: fmt.Sprintf("%d", len(board.Entries))},
		},
	}
	if !board.GeneratedAt.IsZero() {
		suite.Timestamp = board.GeneratedAt.Format(time.RFC3339)
	}

	for _, e := range board.Entries {
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      e.Run,
			Classname: e.Team,
			Props: []JUnitProperty{
				{Name: "rank", Value: fmt.Sprintf("%d", e.Rank)},
				{Name: "mf1", Value: fmt.Sprintf("%.4f", e.MacroF1)},
				{Name: "mf1_cinterval", Value: formatInterval(e.CI)},
			},
			SystemOut: SummarizeReport(e.Report),
		})
	}

	for _, r := range board.Rejections {
		tc := JUnitTestCase{Name: r.Run, Classname: r.Team}
		if r.Reason == models.RejectParseError {
			tc.Error = &JUnitError{Message: "could not parse run", Type: string(r.Reason), Body: r.Detail}
			suite.Errors++
		} else {
			tc.Skipped = &JUnitSkipped{Message: fmt.Sprintf("%s: %s", r.Reason, r.Detail)}
			suite.Skipped++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}
	suite.Tests = len(suite.TestCases)

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Errors:     suite.Errors,
		Skipped:    suite.Skipped,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func writeJUnit(w io.Writer, board *Leaderboard) error {
	data, err := xml.MarshalIndent(ConvertToJUnit(board), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
