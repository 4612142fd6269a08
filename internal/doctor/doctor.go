// Package doctor runs health checks against an askbot installation.
package doctor

import (
	"context"

	"github.com/ksteinfeldt/askbot/internal/config"
)

// CheckStatus is the outcome of a check.
type CheckStatus int

const (
	StatusOK CheckStatus = iota
	StatusWarning
	StatusError
)

func (s CheckStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	default:
		return "error"
	}
}

// CheckContext is what every check runs against.
type CheckContext struct {
	Context context.Context
	Config  *config.Config

	// Online enables checks that call external services.
	Online bool
}

// CheckResult is the report of one check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Details []string
	FixHint string
}

// Check is a single diagnostic.
type Check interface {
	Name() string
	Description() string
	Run(ctx *CheckContext) *CheckResult
}

// Fixer is a check that can repair what it finds.
type Fixer interface {
	Check
	Fix(ctx *CheckContext) ([]string, error)
}

// BaseCheck carries the name and description of a check.
type BaseCheck struct {
	CheckName        string
	CheckDescription string
}

func (b BaseCheck) Name() string        { return b.CheckName }
func (b BaseCheck) Description() string { return b.CheckDescription }

// Doctor runs a fixed list of checks in order.
type Doctor struct {
	checks []Check
}

// New returns a Doctor with the standard checks.
func New() *Doctor {
	return &Doctor{checks: []Check{
		NewConfigCheck(),
		NewStateFileCheck(),
		NewStoreLockCheck(),
		NewTelegramCheck(),
	}}
}

// Register appends a check.
func (d *Doctor) Register(c Check) {
	d.checks = append(d.checks, c)
}

// Report is the result of a run.
type Report struct {
	Results []*CheckResult

	// Fixed holds the changes made by fixers, keyed by check name.
	Fixed map[string][]string
}

// HasErrors reports whether any check ended in StatusError.
func (r *Report) HasErrors() bool {
	for _, res := range r.Results {
		if res.Status == StatusError {
			return true
		}
	}
	return false
}

// Run executes every check. With fix set, a failing Fixer is asked to repair
// and then run again, and the second result is reported.
func (d *Doctor) Run(ctx *CheckContext, fix bool) *Report {
	report := &Report{Fixed: map[string][]string{}}

	for _, c := range d.checks {
		res := c.Run(ctx)

		if fix && res.Status != StatusOK {
			if f, ok := c.(Fixer); ok {
				changes, err := f.Fix(ctx)
				if err != nil {
					res.Details = append(res.Details, "fix failed: "+err.Error())
				} else {
					report.Fixed[c.Name()] = changes
					res = c.Run(ctx)
				}
			}
		}

		report.Results = append(report.Results, res)
	}

	return report
}
