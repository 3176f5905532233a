// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"github.com/poiesic/mealsync/core"
)

// Report is the result of a run: the final outcome of every document in
// input order, the warnings of each document's last attempt and the number
// of passes made.
type Report struct {
	Outcomes []core.ImportOutcome
	Warnings []string
	Passes   int
}

func newReport(results []documentResult, passes int) *Report {
	report := &Report{
		Outcomes: make([]core.ImportOutcome, 0, len(results)),
		Passes:   passes,
	}
	for _, r := range results {
		if r.outcome.Path == "" {
			// never attempted
			continue
		}
		report.Outcomes = append(report.Outcomes, r.outcome)
		for _, w := range r.warnings {
			report.Warnings = append(report.Warnings, r.outcome.DocumentID+": "+w)
		}
	}
	return report
}

// Succeeded returns the outcomes of documents that were imported or skipped.
func (r *Report) Succeeded() []core.ImportOutcome {
	return r.filter(true)
}

// Failed returns the outcomes of documents still failed after the last pass.
func (r *Report) Failed() []core.ImportOutcome {
	return r.filter(false)
}

// Errors returns one "<document>: <stage>: <cause>" line per failed document.
func (r *Report) Errors() []string {
	var lines []string
	for _, o := range r.Failed() {
		lines = append(lines, o.DocumentID+": "+o.ErrorMessage)
	}
	return lines
}

func (r *Report) filter(success bool) []core.ImportOutcome {
	var out []core.ImportOutcome
	for _, o := range r.Outcomes {
		if o.Success == success {
			out = append(out, o)
		}
	}
	return out
}
