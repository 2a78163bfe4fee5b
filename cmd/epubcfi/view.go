package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/shibukawa/epubcfi"
)

// ErrUnknownFormat is returned for an unsupported --format value
var ErrUnknownFormat = errors.New("unknown output format")

type parsed struct {
	CFI      string
	Fragment *epubcfi.Fragment
}

// Serializable mirror of the tree. Exactly one of the optional fields of a
// localPathView, redirectView or assertionView is set.

type resultView struct {
	CFI      string       `json:"cfi" yaml:"cfi"`
	Fragment fragmentView `json:"fragment" yaml:"fragment"`
}

type fragmentView struct {
	Path  pathView   `json:"path" yaml:"path"`
	Range *rangeView `json:"range,omitempty" yaml:"range,omitempty"`
}

type pathView struct {
	Step      stepView      `json:"step" yaml:"step"`
	LocalPath localPathView `json:"local_path" yaml:"local_path"`
}

type localPathView struct {
	Steps    []stepView    `json:"steps,omitempty" yaml:"steps,omitempty"`
	Redirect *redirectView `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	Offset   *offsetView   `json:"offset,omitempty" yaml:"offset,omitempty"`
}

type redirectView struct {
	Path   *pathView   `json:"path,omitempty" yaml:"path,omitempty"`
	Offset *offsetView `json:"offset,omitempty" yaml:"offset,omitempty"`
}

type rangeView struct {
	Start localPathView `json:"start" yaml:"start"`
	End   localPathView `json:"end" yaml:"end"`
}

type stepView struct {
	Size      int            `json:"size" yaml:"size"`
	Assertion *assertionView `json:"assertion,omitempty" yaml:"assertion,omitempty"`
}

type offsetView struct {
	Kind         string         `json:"kind" yaml:"kind"`
	Point        *uint32        `json:"point,omitempty" yaml:"point,omitempty"`
	Start        *float64       `json:"start,omitempty" yaml:"start,omitempty"`
	End          *float64       `json:"end,omitempty" yaml:"end,omitempty"`
	SpatialRange []float64      `json:"spatial_range,omitempty" yaml:"spatial_range,omitempty"`
	Assertion    *assertionView `json:"assertion,omitempty" yaml:"assertion,omitempty"`
}

type assertionView struct {
	Parameters []parameterView `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Value      string          `json:"value,omitempty" yaml:"value,omitempty"`
}

type parameterView struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

func newFragmentView(f *epubcfi.Fragment) fragmentView {
	view := fragmentView{Path: newPathView(&f.Path)}
	if f.Range != nil {
		view.Range = &rangeView{
			Start: newLocalPathView(f.Range.Start),
			End:   newLocalPathView(f.Range.End),
		}
	}
	return view
}

func newPathView(p *epubcfi.Path) pathView {
	return pathView{
		Step:      newStepView(p.Step),
		LocalPath: newLocalPathView(p.LocalPath),
	}
}

func newLocalPathView(lp epubcfi.LocalPath) localPathView {
	var view localPathView
	for _, step := range lp.Steps {
		view.Steps = append(view.Steps, newStepView(step))
	}
	if redirected, ok := lp.Redirection(); ok {
		view.Redirect = &redirectView{}
		if p, ok := redirected.Path(); ok {
			pv := newPathView(p)
			view.Redirect.Path = &pv
		} else if o, ok := redirected.Offset(); ok {
			view.Redirect.Offset = newOffsetView(o)
		}
	}
	if o, ok := lp.Offset(); ok {
		view.Offset = newOffsetView(o)
	}
	return view
}

func newStepView(s epubcfi.Step) stepView {
	return stepView{Size: s.Size, Assertion: newAssertionView(s.Assertion)}
}

func newOffsetView(o epubcfi.Offset) *offsetView {
	view := &offsetView{Assertion: newAssertionView(o.OffsetAssertion())}
	switch v := o.(type) {
	case epubcfi.CharacterOffset:
		view.Kind = "character"
		view.Point = &v.StartAtPoint
	case epubcfi.SpatialOffset:
		view.Kind = "spatial"
		view.Start = &v.Start
		view.End = v.End
	case epubcfi.TemporalOffset:
		view.Kind = "temporal"
		view.Start = &v.StartAt
		if v.SpatialRange != nil {
			view.SpatialRange = []float64{v.SpatialRange.Start, v.SpatialRange.End}
		}
	}
	return view
}

func newAssertionView(a epubcfi.Assertion) *assertionView {
	switch v := a.(type) {
	case epubcfi.ParameterAssertion:
		view := &assertionView{}
		for _, p := range v.Parameters {
			view.Parameters = append(view.Parameters, parameterView{Key: p.Key, Value: p.Value})
		}
		return view
	case epubcfi.ValueAssertion:
		return &assertionView{Value: v.Value}
	}
	return nil
}

func render(w io.Writer, format string, results []parsed) error {
	switch format {
	case "", epubcfi.FormatText:
		for _, r := range results {
			fmt.Fprintln(w, r.Fragment.String())
		}
		return nil
	case epubcfi.FormatTree:
		for _, r := range results {
			renderTree(w, r.Fragment)
		}
		return nil
	case epubcfi.FormatYAML, epubcfi.FormatJSON:
		views := make([]resultView, 0, len(results))
		for _, r := range results {
			views = append(views, resultView{CFI: r.CFI, Fragment: newFragmentView(r.Fragment)})
		}
		var (
			data []byte
			err  error
		)
		if format == epubcfi.FormatYAML {
			data, err = yaml.Marshal(views)
		} else {
			data, err = json.MarshalIndent(views, "", "  ")
			data = append(data, '\n')
		}
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", format, err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func renderTree(w io.Writer, f *epubcfi.Fragment) {
	epubcfi.Walk(f, func(node epubcfi.AstNode, depth int) bool {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), describe(node))
		return true
	})
}

func describe(node epubcfi.AstNode) string {
	label := node.Type().String()
	switch v := node.(type) {
	case *epubcfi.Fragment:
		return label + " " + v.String()
	case *epubcfi.Step:
		return fmt.Sprintf("%s %d", label, v.Size)
	case epubcfi.CharacterOffset:
		return fmt.Sprintf("%s %d", label, v.StartAtPoint)
	case epubcfi.SpatialOffset:
		if v.End == nil {
			return fmt.Sprintf("%s %s", label, epubcfi.FormatNumber(v.Start))
		}
		return fmt.Sprintf("%s %s:%s", label, epubcfi.FormatNumber(v.Start), epubcfi.FormatNumber(*v.End))
	case epubcfi.TemporalOffset:
		if v.SpatialRange == nil {
			return fmt.Sprintf("%s %s", label, epubcfi.FormatNumber(v.StartAt))
		}
		return fmt.Sprintf("%s %s@%s:%s", label, epubcfi.FormatNumber(v.StartAt),
			epubcfi.FormatNumber(v.SpatialRange.Start), epubcfi.FormatNumber(v.SpatialRange.End))
	case epubcfi.Assertion:
		return label + " " + v.String()
	}
	return label
}
