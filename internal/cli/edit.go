package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/shopfloor/pkg/editor"
)

type editOpts struct {
	name       string
	editMode   bool
	logFile    string
	saveOnQuit bool
}

// editCommand creates the interactive terminal editor command.
func (c *CLI) editCommand() *cobra.Command {
	var opts editOpts

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the floor plan in the terminal",
		Long: `Open the floor plan in an interactive terminal editor.

Drag the background to pan and, in edit mode, drag machines to move them.
Outside edit mode, clicking a machine shows its catalog details.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "snapshot name (overrides store.name)")
	cmd.Flags().BoolVarP(&opts.editMode, "edit", "e", false, "start in edit mode")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs here while the editor is open")
	cmd.Flags().BoolVar(&opts.saveOnQuit, "save-on-quit", false, "persist the layout when the editor exits")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, opts editOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.name != "" {
		cfg.Store.Name = opts.name
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	sess, err := c.openSession(ctx, cfg, c.Logger, editor.WithEditMode(opts.editMode))
	if err != nil {
		return err
	}
	defer sess.Close()

	// The terminal UI owns stdout and stderr until it exits.
	restore, err := c.redirectLogs(opts.logFile)
	if err != nil {
		return err
	}
	model := newEditorModel(ctx, sess)
	_, err = tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run()
	restore()
	if err != nil {
		return fmt.Errorf("run editor: %w", err)
	}

	if opts.saveOnQuit {
		snap := sess.editor.Snapshot()
		digest, err := sess.saveSnapshot(ctx, &snap)
		if err != nil {
			return err
		}
		printSuccess("Saved %q (%s)", cfg.Store.Name, shortDigest(digest))
	}
	return nil
}

// redirectLogs points the logger at path, or discards output when path is
// empty. The returned func restores stderr.
func (c *CLI) redirectLogs(path string) (func(), error) {
	var w io.Writer = io.Discard
	var f *os.File
	if path != "" {
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
	}
	c.Logger.SetOutput(w)
	return func() {
		c.Logger.SetOutput(os.Stderr)
		if f != nil {
			f.Close()
		}
	}, nil
}
