package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/ggoodman/contracts/docs"
	"github.com/spf13/cobra"
)

// formatTerminal renders Markdown for a terminal. It is only offered by the
// CLI.
const formatTerminal = "terminal"

func (a *app) newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [module...]",
		Short: "Render module documentation",
		Long: `Render the documentation of the named modules, or of every module, to
standard output. Formats: markdown, json, yaml, schema and terminal.
The unnamed module is written "_".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mods, err := a.modules(args)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), mods)
		},
	}
	cmd.Flags().String(cfgKeyFormat, defaultFormat, "output format")
	cmd.Flags().String(cfgKeyTitle, "", "heading placed above the documentation")
	cmd.Flags().String(cfgKeyStyle, defaultStyle, "glamour style of the terminal format")
	return cmd
}

func (a *app) render(w io.Writer, mods []docs.Module) error {
	if a.cfg.Format == formatTerminal {
		var md bytes.Buffer
		a.writeTitle(&md)
		if err := docs.WriteMarkdown(&md, mods...); err != nil {
			return err
		}
		out, err := renderTerminal(md.String(), a.cfg.Style)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}

	f, err := docs.ParseFormat(a.cfg.Format)
	if err != nil {
		return err
	}
	if f == docs.FormatMarkdown {
		a.writeTitle(w)
	}
	if len(mods) == 1 {
		return docs.RenderModule(w, f, mods[0])
	}
	return docs.RenderModules(w, f, mods)
}

func (a *app) writeTitle(w io.Writer) {
	if a.cfg.Title != "" {
		fmt.Fprintf(w, "# %s\n\n", a.cfg.Title)
	}
}

func renderTerminal(md, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(80)}
	if style == "" || style == defaultStyle {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("terminal renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render terminal: %w", err)
	}
	return out, nil
}
