package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/shibukawa/epubcfi"
)

// Sentinel errors
var (
	ErrNoInput          = errors.New("no CFI given: pass them as arguments or with --file")
	ErrParseFailed      = errors.New("some CFIs could not be parsed")
	ErrValidationFailed = errors.New("some CFIs are invalid")
)

var (
	info    = color.New(color.FgBlue)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
)

// InputFlags selects where CFIs are read from
type InputFlags struct {
	CFIs []string `arg:"" help:"CFIs to process" optional:""`
	File string   `short:"f" help:"Read CFIs from a file, one per line ('-' for stdin)"`
}

// read collects CFIs from arguments and the input file. Blank lines and lines
// starting with '#' are skipped.
func (in *InputFlags) read(ctx *Context) ([]string, error) {
	inputs := append([]string{}, in.CFIs...)

	if in.File != "" {
		var r io.Reader
		if in.File == "-" {
			r = ctx.Stdin
		} else {
			f, err := os.Open(in.File)
			if err != nil {
				return nil, fmt.Errorf("failed to open input file: %w", err)
			}
			defer f.Close()
			r = f
		}

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			inputs = append(inputs, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
	}

	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	return inputs, nil
}

func loadConfig(ctx *Context) (*epubcfi.Config, error) {
	config, err := epubcfi.LoadConfig(ctx.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if ctx.Verbose {
		opts := config.ParserOptions()
		info.Fprintf(ctx.Stderr, "Parser options: max_step_size=%d max_redirections=%d require_steps=%t assertion_values=%s allow_range=%t\n",
			opts.MaxStepSize, opts.MaxRedirections, opts.RequireSteps, opts.AssertionValues, opts.AllowRange)
	}

	return config, nil
}

// ParseCmd represents the parse command
type ParseCmd struct {
	InputFlags
	Format string `help:"Output format: text, tree, yaml or json (defaults to output.format of the configuration)"`
}

func (p *ParseCmd) Run(ctx *Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	inputs, err := p.read(ctx)
	if err != nil {
		return err
	}

	format := p.Format
	if format == "" {
		format = config.Output.Format
	}

	opts := config.ParserOptions()
	opts.Trace = ctx.Trace
	opts.TraceOutput = ctx.Stderr

	var results []parsed
	failed := 0

	for _, input := range inputs {
		fragment, err := epubcfi.ParseFragmentWithOptions(input, opts)
		if err != nil {
			failed++
			if !ctx.Quiet {
				failure.Fprintf(ctx.Stderr, "Failed to parse %s: %v\n", input, err)
			}
			continue
		}
		results = append(results, parsed{CFI: input, Fragment: fragment})
	}

	if err := render(ctx.Stdout, format, results); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrParseFailed, failed, len(inputs))
	}

	return nil
}

// ValidateCmd represents the validate command
type ValidateCmd struct {
	InputFlags
}

func (v *ValidateCmd) Run(ctx *Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	inputs, err := v.read(ctx)
	if err != nil {
		return err
	}

	if ctx.Verbose {
		info.Fprintf(ctx.Stderr, "Validating %d CFI(s)\n", len(inputs))
	}

	opts := config.ParserOptions()
	opts.Trace = ctx.Trace
	opts.TraceOutput = ctx.Stderr

	failed := 0

	for _, input := range inputs {
		_, err := epubcfi.ParseFragmentWithOptions(input, opts)
		if err != nil {
			failed++
			if !ctx.Quiet {
				failure.Fprintf(ctx.Stdout, "NG  %s: %v\n", input, err)
			}
			continue
		}
		if !ctx.Quiet {
			success.Fprintf(ctx.Stdout, "OK  %s\n", input)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrValidationFailed, failed, len(inputs))
	}

	if ctx.Verbose {
		success.Fprintf(ctx.Stderr, "Validation completed successfully\n")
	}

	return nil
}
