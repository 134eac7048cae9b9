package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"referensi/internal/model"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// print writes v in the structured output format. Text falls back to JSON.
func (e *env) print(cmd *cobra.Command, v any) error {
	w := cmd.OutOrStdout()
	if e.output == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (e *env) printDocuments(cmd *cobra.Command, docs []model.Document) error {
	if e.output != outputText {
		return e.print(cmd, docs)
	}
	w := newTabWriter(cmd.OutOrStdout())
	if len(docs) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No documents")
		return err
	}
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tDOWNLOAD")
	for _, d := range docs {
		category := "-"
		if d.CategoryName != nil {
			category = *d.CategoryName
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", d.ID, d.Name, category, d.DownloadURL)
	}
	return w.Flush()
}
