package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/shopfloor/pkg/catalog"
	"github.com/matzehuels/shopfloor/pkg/config"
)

type machinesOpts struct {
	available bool
	json      bool
}

// machinesCommand creates the machines command.
func (c *CLI) machinesCommand() *cobra.Command {
	var opts machinesOpts

	cmd := &cobra.Command{
		Use:   "machines",
		Short: "List the machine catalog",
		Long:  `List every machine in the catalog and whether it is already on the saved layout.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			listings, err := c.listMachines(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if opts.available {
				listings = unplaced(listings)
			}
			if opts.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(listings)
			}
			renderMachines(cmd.OutOrStdout(), listings)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.available, "available", false, "only list machines not yet placed")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON instead of a table")

	return cmd
}

// listMachines flags the catalog against the stored layout. A missing
// layout means nothing is placed.
func (c *CLI) listMachines(ctx context.Context, cfg config.Config) ([]catalog.Listing, error) {
	cat, err := loadCatalog(cfg.Machines)
	if err != nil {
		return nil, err
	}
	store, err := c.openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	snap, err := store.Load(ctx, cfg.Store.Name)
	if err != nil {
		return nil, fmt.Errorf("load layout %q: %w", cfg.Store.Name, err)
	}
	placed := map[string]struct{}{}
	if snap != nil {
		for _, it := range snap.Items {
			if it.ReferenceID != "" {
				placed[it.ReferenceID] = struct{}{}
			}
		}
	}
	return cat.List(placed), nil
}

func unplaced(ls []catalog.Listing) []catalog.Listing {
	out := ls[:0:0]
	for _, l := range ls {
		if !l.Placed {
			out = append(out, l)
		}
	}
	return out
}

func renderMachines(w io.Writer, ls []catalog.Listing) {
	rows := make([][]string, len(ls))
	for i, l := range ls {
		placed := ""
		if l.Placed {
			placed = iconPlaced
		}
		rows[i] = []string{l.ID, l.DisplayLabel(), l.Type, l.Model, l.Status.Label(), placed}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Label", "Type", "Model", "Status", "Placed").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if row < 0 || row >= len(ls) {
				return base
			}
			switch col {
			case 0, 3:
				return base.Foreground(colorDim)
			case 4:
				return base.Foreground(statusColor(ls[row].Status))
			case 5:
				return base.Foreground(colorCyan)
			}
			return base.Foreground(colorWhite)
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("  %d machines, %d placed", len(ls), countPlaced(ls))))
}

func countPlaced(ls []catalog.Listing) int {
	n := 0
	for _, l := range ls {
		if l.Placed {
			n++
		}
	}
	return n
}
