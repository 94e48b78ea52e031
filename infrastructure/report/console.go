package report

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ahrav/judgestat/internal/domain"
	"github.com/ahrav/judgestat/internal/ports"
)

// ConsoleReporter prints every derived table in markdown style.
type ConsoleReporter struct {
	out   io.Writer
	alpha float64
}

// ConsoleOption configures a ConsoleReporter.
type ConsoleOption func(*ConsoleReporter)

// WithWriter redirects output. The default is os.Stdout.
func WithWriter(w io.Writer) ConsoleOption {
	return func(c *ConsoleReporter) { c.out = w }
}

// WithAlpha sets the significance level shown for the independence test.
func WithAlpha(alpha float64) ConsoleOption {
	return func(c *ConsoleReporter) { c.alpha = alpha }
}

// NewConsoleReporter creates a reporter that writes to stdout.
func NewConsoleReporter(opts ...ConsoleOption) *ConsoleReporter {
	c := &ConsoleReporter{out: os.Stdout, alpha: DefaultAlpha}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ConsoleReporter) Name() string { return "console" }

// Report prints the tables. It produces no artifacts.
func (c *ConsoleReporter) Report(ctx context.Context, summary *domain.Summary) ([]ports.Artifact, error) {
	for _, t := range BuildTables(summary, c.alpha) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.printTable(t); err != nil {
			return nil, ports.NewRenderError(c.Name(), t.Name, err)
		}
	}
	return nil, nil
}

func (c *ConsoleReporter) printTable(t Table) error {
	if _, err := fmt.Fprintf(c.out, "\n## %s\n\n", t.Title); err != nil {
		return err
	}
	table := createStandardTable(t.Header, c.out)
	for _, row := range t.Rows {
		if err := table.Append(formatRow(row, false)); err != nil {
			return err
		}
	}
	return table.Render()
}

// createStandardTable builds a left-aligned markdown table with no outer
// top or bottom border.
func createStandardTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		MaxWidth: 100,
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}
