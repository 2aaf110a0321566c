package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rpupo63/plant-tag-config/config"
	"github.com/rpupo63/plant-tag-config/database"
	"github.com/rpupo63/plant-tag-config/services"
)

type cli struct {
	config map[string]string
	out    io.Writer
}

func newRootCmd(c map[string]string, out io.Writer) *cobra.Command {
	app := cli{config: c, out: out}

	rootCmd := &cobra.Command{
		Use:           "tagctl",
		Short:         "Import and export plant tag configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.AddCommand(app.importCmd(), app.exportCmd(), app.catalogCmd())
	return rootCmd
}

// databaseConfig defaults DB_TYPE to sqlite and refuses the in-memory store,
// whose contents would vanish when the command exits.
func (a cli) databaseConfig() (map[string]string, error) {
	c := maps.Clone(a.config)
	if c == nil {
		c = map[string]string{}
	}
	dbType := strings.ToLower(config.GetString(c, "DB_TYPE", "sqlite"))
	if dbType == "memory" {
		return nil, fmt.Errorf("DB_TYPE=memory does not persist; use sqlite, postgres or supa")
	}
	c["DB_TYPE"] = dbType
	return c, nil
}

// withConfigurator opens the configured database for the length of fn.
func (a cli) withConfigurator(fn func(*services.Configurator) error) error {
	c, err := a.databaseConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(c)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	catalog, err := config.LoadCatalog(a.config)
	if err != nil {
		return err
	}
	return fn(services.NewConfigurator(database.New(db), catalog))
}

func (a cli) importCmd() *cobra.Command {
	var industry, equipment string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a generic tag sheet (.csv or .xlsx) for one industry and equipment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return a.withConfigurator(func(c *services.Configurator) error {
				result, err := c.ImportFile(industry, equipment, filepath.Base(args[0]), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "imported %d rows for %s/%s (%d created, %d updated)\n",
					result.Rows, result.Industry, result.Equipment, result.Created, result.Updated)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&industry, "industry", "", "Industry the tags belong to (required)")
	cmd.Flags().StringVar(&equipment, "equipment", "", "Equipment the tags belong to (required)")
	_ = cmd.MarkFlagRequired("industry")
	_ = cmd.MarkFlagRequired("equipment")
	return cmd
}

func (a cli) exportCmd() *cobra.Command {
	var format, industry, equipment, outDir string

	cmd := &cobra.Command{
		Use:       "export tags|generic-tags",
		Short:     "Write a dataset to a timestamped csv, xlsx or json file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: services.Datasets,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := services.ParseDataset(args[0])
			if err != nil {
				return err
			}
			f, err := services.ParseFormat(format)
			if err != nil {
				return err
			}

			return a.withConfigurator(func(c *services.Configurator) error {
				file, err := c.Export(dataset, f, services.ExportFilter{Industry: industry, Equipment: equipment})
				if err != nil {
					return err
				}
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
				path := filepath.Join(outDir, filepath.Base(file.Name))
				if err := os.WriteFile(path, file.Data, 0o644); err != nil {
					return err
				}
				fmt.Fprintln(a.out, path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", string(services.FormatCSV), "csv, xlsx or json")
	cmd.Flags().StringVar(&industry, "industry", "", "Restrict generic tags to one industry")
	cmd.Flags().StringVar(&equipment, "equipment", "", "Restrict generic tags to one equipment")
	cmd.Flags().StringVar(&outDir, "out", ".", "Directory to write the file to")
	return cmd
}

func (a cli) catalogCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the industries, generic tags and units new sessions start from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := config.LoadCatalog(a.config)
			if err != nil {
				return err
			}
			switch strings.ToLower(format) {
			case "yaml", "yml":
				enc := yaml.NewEncoder(a.out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(catalog)
			case "json":
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}
			return fmt.Errorf("unknown catalog format %q", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "yaml or json")
	return cmd
}
