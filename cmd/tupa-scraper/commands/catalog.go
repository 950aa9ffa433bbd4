package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
	repo "github.com/joseph-ayodele/tupa-scraper/internal/repository"
)

var searchFlags struct {
	limit    int
	category string
	entity   string
}

func init() {
	searchCmd.Flags().IntVar(&searchFlags.limit, "limit", 10, "Maximum number of results.")
	searchCmd.Flags().StringVar(&searchFlags.category, "category", "", "Only procedures in this category.")
	searchCmd.Flags().StringVar(&searchFlags.entity, "entity", "", "Only procedures of this entity code.")
	rootCmd.AddCommand(searchCmd, statsCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query> [--limit N]",
	Short: "Searches the stored catalog by name or description.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := current.openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		found, err := current.procedures(db).Search(cmd.Context(), repo.SearchQuery{
			Text:       args[0],
			Category:   searchFlags.category,
			EntityCode: searchFlags.entity,
			Limit:      searchFlags.limit,
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(found) == 0 {
			fmt.Fprintf(out, "No procedures match %q\n", args[0])
			return nil
		}
		printProcedures(out, found)
		fmt.Fprintf(out, "%d result(s)\n", len(found))
		return nil
	},
}

func printProcedures(w io.Writer, found []entity.StoredProcedure) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Name", "Entity", "Category", "Cost", "Processing time", "Online"})
	for _, sp := range found {
		p := sp.Procedure
		t.AppendRow(table.Row{
			enrich.Truncate(p.Name, 60),
			p.EntityCode,
			p.Category,
			fmt.Sprintf("%s %.2f", p.Currency, p.Cost),
			p.ProcessingTime,
			p.IsOnline,
		})
	}
	t.Render()
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints procedure counts by entity and by category.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := current.openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := current.procedures(db).Stats(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Total procedures: %d\n", stats.TotalProcedures)
		fmt.Fprintf(out, "Entities: %d\n", stats.EntitiesCount)
		printCounts(out, "Entity", stats.ByEntity)
		printCounts(out, "Category", stats.ByCategory)
		return nil
	},
}

// printCounts renders counts by descending count, then key.
func printCounts(w io.Writer, label string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	t := newTable(w)
	t.AppendHeader(table.Row{label, "Procedures"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, counts[k]})
	}
	t.Render()
}
