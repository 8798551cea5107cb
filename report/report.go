// Package report is the ambient, styled diagnostic surface a driver
// built on top of recast uses to display progress and errors. Unlike
// the rest of the core it is explicitly safe for concurrent use: a
// pass pipeline may run several independent cores (one per
// translation unit) against a single shared Reporter.
package report

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

var (
	successFG = pterm.FgLightGreen
	successBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	warnFG    = pterm.FgYellow
	warnBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	errorFG   = pterm.FgRed
	errorBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	infoFG    = successFG
	infoBG    = successBG
)

// Level controls which messages a Reporter displays.
type Level int

const (
	LevelSilent Level = iota
	LevelError
	LevelWarn
	LevelVerbose
)

// Reporter accumulates and displays diagnostics for a decompilation
// run. All methods are safe to call from multiple goroutines.
type Reporter struct {
	mu      sync.Mutex
	level   Level
	errs    int
	warns   int
	relaxed int

	phaseName  string
	phaseStart time.Time
	spinner    *pterm.SpinnerPrinter
}

// New creates a Reporter at the given display level.
func New(level Level) *Reporter {
	return &Reporter{level: level}
}

// Error reports a fatal or recoverable error found while running a
// pass named by tag (e.g. "convert", "materialize").
func (r *Reporter) Error(tag string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs++
	if r.level < LevelError {
		return
	}
	errorBG.Print(tag + " error")
	errorFG.Println(" " + err.Error())
}

// Warn reports a non-fatal condition, e.g. a RelaxedAccepts hit from
// materialize.CanBeCreated.
func (r *Reporter) Warn(tag, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns++
	if r.level < LevelWarn {
		return
	}
	warnBG.Print(tag + " warning")
	warnFG.Println(" " + msg)
}

// Info reports a purely informational message.
func (r *Reporter) Info(tag, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.level < LevelVerbose {
		return
	}
	infoBG.Print(tag)
	infoFG.Println(" " + msg)
}

// RecordRelaxedAccept notes that the ARM/Thumb/PIC32 data-in-code
// heuristic fired, for a later summary line.
func (r *Reporter) RecordRelaxedAccept() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.relaxed++
}

const maxPhaseNameLen = len("materialize")

// BeginPhase starts a spinner for a named pass (e.g. "convert",
// "mutate", "materialize", "stackvar", "xform").
func (r *Reporter) BeginPhase(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.level < LevelVerbose {
		return
	}
	r.phaseName = name
	r.phaseStart = time.Now()
	pad := maxPhaseNameLen - len(name) + 2
	if pad < 1 {
		pad = 1
	}
	r.spinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(infoFG))
	r.spinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix:       pterm.Prefix{Style: successBG, Text: "done"},
	}
	r.spinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix:       pterm.Prefix{Style: errorBG, Text: "fail"},
	}
	r.spinner.Start(name + "..." + strings.Repeat(" ", pad))
}

// EndPhase stops the current phase's spinner, reporting success or
// failure.
func (r *Reporter) EndPhase(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spinner == nil {
		return
	}
	elapsed := time.Since(r.phaseStart)
	pad := maxPhaseNameLen - len(r.phaseName) + 2
	if pad < 1 {
		pad = 1
	}
	label := r.phaseName + strings.Repeat(" ", pad)
	if success {
		r.spinner.Success(label, fmt.Sprintf("(%.3fs)", elapsed.Seconds()))
	} else {
		r.spinner.Fail(label)
	}
	r.spinner = nil
}

// Summary prints a one-line run summary: error/warning counts and how
// many times the relaxed materialization heuristic fired.
func (r *Reporter) Summary() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.level < LevelError {
		return
	}
	if r.errs == 0 {
		successFG.Print("done ")
	} else {
		errorFG.Print("failed ")
	}
	fmt.Printf("(%d error(s), %d warning(s)", r.errs, r.warns)
	if r.relaxed > 0 {
		fmt.Printf(", %d relaxed materialize accept(s)", r.relaxed)
	}
	fmt.Println(")")
}

// ErrorCount reports the number of errors recorded so far.
func (r *Reporter) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errs
}
