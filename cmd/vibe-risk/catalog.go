package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-risk/internal/catalog"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and manage the signature catalog",
		Long: `Inspect and manage the signature catalog.

By default the built-in catalog is used. Set catalog.path to a DuckDB file
created with 'catalog init' or 'catalog import' to use a custom one.`,
		Example: `  vibe-risk catalog list
  vibe-risk catalog init --db signatures.duckdb
  vibe-risk catalog import signatures.tsv --db signatures.duckdb
  vibe-risk config set catalog.path signatures.duckdb`,
	}

	cmd.AddCommand(newCatalogListCmd())
	cmd.AddCommand(newCatalogInitCmd())
	cmd.AddCommand(newCatalogImportCmd())

	return cmd
}

func newCatalogListCmd() *cobra.Command {
	var format, dbPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				dbPath = cfg.Catalog.Path
			}
			c, err := catalog.Load(dbPath)
			if err != nil {
				return err
			}
			return printCatalog(c, format)
		},
	}

	cmd.Flags().StringVarP(&format, "output-format", "f", "tab", "Output format: tab, yaml, json")
	cmd.Flags().StringVar(&dbPath, "db", "", "Catalog DuckDB file (default: catalog.path, or built-in)")

	return cmd
}

func printCatalog(c *catalog.Catalog, format string) error {
	sigs := c.Signatures()
	switch format {
	case "tab":
		fmt.Println(strings.Join([]string{"#Gene", "Location", "Ref", "Alt", "Condition", "Pathogenicity"}, "\t"))
		for _, s := range sigs {
			fmt.Println(strings.Join([]string{
				s.Gene, s.Key(), s.Ref, s.Alt, s.Condition,
				strconv.FormatFloat(s.BasePathogenicity, 'f', -1, 64),
			}, "\t"))
		}
	case "yaml":
		out, err := yaml.Marshal(sigs)
		if err != nil {
			return fmt.Errorf("marshaling catalog: %w", err)
		}
		fmt.Print(string(out))
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sigs)
	default:
		return fmt.Errorf("unknown output format %q (want tab, yaml or json)", format)
	}
	return nil
}

func newCatalogInitCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in catalog to a DuckDB file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogInit(dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Catalog DuckDB file to create")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runCatalogInit(dbPath string) error {
	s, err := catalog.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Clear(); err != nil {
		return err
	}
	if err := s.Write(catalog.Default().Signatures()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d signatures to %s\n", catalog.Default().Len(), dbPath)
	return nil
}

func newCatalogImportCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import <signatures.tsv>",
		Short: "Replace a catalog DuckDB file with signatures from a TSV file",
		Long: `Import signatures from a tab-separated file with the header
  gene  chrom  pos  ref  alt  condition  pathogenicity
replacing the contents of the DuckDB file. The import runs in one transaction
and is validated before commit; on any error the previous contents are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogImport(args[0], dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Catalog DuckDB file to write")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runCatalogImport(tsvPath, dbPath string) error {
	s, err := catalog.Open(dbPath)
	if err != nil {
		return err
	}
	n, err := s.ImportTSV(tsvPath)
	s.Close()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Imported %d signatures into %s\n", n, dbPath)
	return nil
}
