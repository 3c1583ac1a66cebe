package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shopfloor/pkg/errors"
	"github.com/matzehuels/shopfloor/pkg/layout"
	"github.com/matzehuels/shopfloor/pkg/snapshot"
)

// snapshotCommand creates the snapshot management command.
func (c *CLI) snapshotCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect or reset the persisted layout",
	}
	cmd.PersistentFlags().StringVar(&name, "name", "", "snapshot name (overrides store.name)")

	cmd.AddCommand(c.snapshotShowCommand(&name))
	cmd.AddCommand(c.snapshotExportCommand(&name))
	cmd.AddCommand(c.snapshotImportCommand(&name))
	cmd.AddCommand(c.snapshotResetCommand(&name))

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, name string, fn func(s snapshot.Store, name string) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if name == "" {
		name = cfg.Store.Name
	}
	if err := errors.ValidateSnapshotName(name); err != nil {
		return err
	}
	store, err := c.openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store, name)
}

func (c *CLI) snapshotShowCommand(name *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Summarize the stored layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, *name, func(s snapshot.Store, name string) error {
				snap, err := s.Load(ctx, name)
				if err != nil {
					return err
				}
				if snap == nil {
					printInfo("No layout stored under %q", name)
					return nil
				}
				printSnapshot(name, snap)
				return nil
			})
		},
	}
}

func printSnapshot(name string, snap *layout.Snapshot) {
	counts := map[layout.Kind]int{}
	for _, it := range snap.Items {
		counts[it.Kind]++
	}
	printKeyValue("Name", name)
	printKeyValue("Items", fmt.Sprintf("%d (%d machines, %d labels, %d zones)",
		len(snap.Items), counts[layout.KindMachine], counts[layout.KindLabel], counts[layout.KindZone]))
	printKeyValue("Zoom", fmt.Sprintf("%.0f%%", snap.Viewport.Scale*100))
	printKeyValue("Pan", fmt.Sprintf("%.0f, %.0f", snap.Viewport.Pan.X, snap.Viewport.Pan.Y))
	printKeyValue("Digest", shortDigest(snapshot.Digest(snap)))
}

func (c *CLI) snapshotExportCommand(name *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the stored layout as JSON to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, *name, func(s snapshot.Store, name string) error {
				snap, err := s.Load(ctx, name)
				if err != nil {
					return err
				}
				if snap == nil {
					return errors.New(errors.ErrCodeNotFound, "no layout stored under %q", name)
				}
				data, err := snapshot.Encode(snap)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			})
		},
	}
}

func (c *CLI) snapshotImportCommand(name *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored layout with a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			snap, err := snapshot.Decode(data)
			if err != nil {
				return err
			}
			// Restoring into a scratch store validates items and uid uniqueness.
			if err := layout.New().Restore(*snap); err != nil {
				return err
			}
			ctx := cmd.Context()
			return c.withStore(ctx, *name, func(s snapshot.Store, name string) error {
				if err := s.Save(ctx, name, snap); err != nil {
					return err
				}
				printSuccess("Imported %d items into %q", len(snap.Items), name)
				return nil
			})
		},
	}
}

func (c *CLI) snapshotResetCommand(name *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored layout",
		Long:  `Delete the stored layout. The next session starts from the default floor plan.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, *name, func(s snapshot.Store, name string) error {
				if err := s.Delete(ctx, name); err != nil {
					return err
				}
				printSuccess("Reset layout %q", name)
				return nil
			})
		},
	}
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
