package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"referensi/internal/query"
)

func (e *env) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and full-text index if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// app.Open already migrated; report what is there
			cats, err := e.stack.Service.Categories(cmd.Context())
			if err != nil {
				return err
			}
			return e.print(cmd, map[string]any{
				"status":     "ready",
				"driver":     e.cfg.Database.Driver,
				"categories": len(cats),
			})
		},
	}
}

func (e *env) newSearchCmd() *cobra.Command {
	var category string
	c := &cobra.Command{
		Use:   "search <keyword>...",
		Short: "Full-text search over document names",
		Long:  `Search returns every document whose name matches all keyword terms. Results are not paginated.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := e.stack.Service.Search(cmd.Context(), strings.Join(args, " "), query.ParseCategoryID(category))
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			return e.printDocuments(cmd, docs)
		},
	}
	c.Flags().StringVarP(&category, "category", "c", "", "Restrict to a category id")
	return c
}

func (e *env) newListCmd() *cobra.Command {
	var (
		keyword, category string
		page, limit       int
	)
	c := &cobra.Command{
		Use:   "list",
		Short: "Paginated listing, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := query.ParsePageRequest(keyword, category, strconv.Itoa(page), strconv.Itoa(limit))
			res, err := e.stack.Service.ListPage(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("list: %w", err)
			}
			if e.output != outputText {
				return e.print(cmd, res)
			}
			if err := e.printDocuments(cmd, res.Items); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "page %d, %d per page, %d total\n", res.Page, res.Limit, res.Total)
			return err
		},
	}
	c.Flags().StringVarP(&keyword, "query", "q", "", "Full-text keyword")
	c.Flags().StringVarP(&category, "category", "c", "", "Category id")
	c.Flags().IntVarP(&page, "page", "p", query.DefaultPage, "Page number")
	c.Flags().IntVarP(&limit, "limit", "l", query.DefaultLimit, "Page size")
	return c
}

func (e *env) newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats, err := e.stack.Service.Categories(cmd.Context())
			if err != nil {
				return err
			}
			if e.output != outputText {
				return e.print(cmd, cats)
			}
			w := newTabWriter(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME")
			for _, c := range cats {
				fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Name)
			}
			return w.Flush()
		},
	}
}

func (e *env) newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Show a random sample of documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			docs, err := e.stack.Service.Discover(cmd.Context())
			if err != nil {
				return err
			}
			return e.printDocuments(cmd, docs)
		},
	}
}
