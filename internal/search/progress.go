package search

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// ProgressObserver renders a terminal progress bar over the evaluation
// budget. The bar advances once per sampled candidate and its description
// tracks the best fitness so far.
type ProgressObserver struct {
	NoopObserver

	out io.Writer
	bar *progressbar.ProgressBar
}

// NewProgressObserver writes to stderr. Pass a non-nil writer to redirect.
func NewProgressObserver(out io.Writer) *ProgressObserver {
	if out == nil {
		out = os.Stderr
	}
	return &ProgressObserver{out: out}
}

func (p *ProgressObserver) Begin(total int) {
	if total == Unbounded {
		// Spinner mode when there is no budget to count down.
		total = -1
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("best: -"),
		progressbar.OptionSetItsString("evals"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
	)
}

func (p *ProgressObserver) SampleSolution(Candidate) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *ProgressObserver) UpdateBest(best Result, _ *Result) {
	if p.bar != nil {
		p.bar.Describe(fmt.Sprintf("best: %.3f", best.Fitness))
	}
}

func (p *ProgressObserver) End(*Result) {
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(p.out)
	}
}
