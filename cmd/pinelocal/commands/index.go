package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pinelocal"
	"github.com/hupe1980/pinelocal/distance"
	"github.com/hupe1980/pinelocal/model"
)

func newIndexCmd(flags *globalFlags) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Maintain the indexes of a data directory",
		Long: `Maintain the indexes of a data directory without the HTTP API.

These commands take the data directory lock, so they fail while a server is
running on the same directory.`,
	}

	indexCmd.AddCommand(
		newIndexListCmd(flags),
		newIndexDescribeCmd(flags),
		newIndexStatsCmd(flags),
		newIndexCreateCmd(flags),
		newIndexDeleteCmd(flags),
		newIndexExportCmd(flags),
		newIndexImportCmd(flags),
	)
	return indexCmd
}

// withDB opens the data directory, runs fn and closes it again.
func withDB(cmd *cobra.Command, flags *globalFlags, fn func(db *pinelocal.DB) error) error {
	db, err := openDB(cmd, flags)
	if err != nil {
		return err
	}
	err = fn(db)
	if cerr := db.Close(); err == nil {
		err = cerr
	}
	return err
}

func newIndexListCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexes in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, flags, func(db *pinelocal.DB) error {
				entries, err := db.ListIndexes(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), model.ListIndexesResponse{Indexes: entries})
				}
				return printIndexTable(cmd.OutOrStdout(), entries)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func printIndexTable(w io.Writer, entries []model.IndexDescription) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No indexes found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDIMENSION\tMETRIC\tCLOUD\tREGION\tSTATE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			e.Name, e.Dimension, e.Metric,
			e.Spec.Serverless.Cloud, e.Spec.Serverless.Region, e.Status.State)
	}
	return tw.Flush()
}

func newIndexDescribeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <name>",
		Short: "Print the registry entry of an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, flags, func(db *pinelocal.DB) error {
				desc, err := db.DescribeIndex(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), desc)
			})
		},
	}
}

func newIndexStatsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <name>",
		Short: "Print the dimension and vector count of an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, flags, func(db *pinelocal.DB) error {
				stats, err := db.DescribeIndexStats(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
}

func newIndexCreateCmd(flags *globalFlags) *cobra.Command {
	var (
		dimension int
		metric    string
		cloud     string
		region    string
	)

	cmd := &cobra.Command{
		Use:     "create <name>",
		Short:   "Create an empty index",
		Example: `  pinelocal index create docs --dimension 1536 --metric cosine`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, flags, func(db *pinelocal.DB) error {
				desc, err := db.CreateIndex(cmd.Context(), model.CreateIndexRequest{
					Name:      args[0],
					Dimension: dimension,
					Metric:    distance.Metric(metric),
					Spec: model.Spec{Serverless: model.ServerlessSpec{
						Cloud:  cloud,
						Region: region,
					}},
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), desc)
			})
		},
	}

	cmd.Flags().IntVarP(&dimension, "dimension", "d", 0, "vector dimension (required)")
	cmd.Flags().StringVarP(&metric, "metric", "m", string(distance.MetricCosine), "cosine, euclidean or dotproduct")
	cmd.Flags().StringVar(&cloud, "cloud", "aws", "serverless cloud")
	cmd.Flags().StringVar(&region, "region", "us-east-1", "serverless region")
	_ = cmd.MarkFlagRequired("dimension")
	return cmd
}

func newIndexDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an index and all of its vectors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, flags, func(db *pinelocal.DB) error {
				if err := db.DeleteIndex(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Index '%s' deleted.\n", args[0])
				return err
			})
		},
	}
}

func newIndexExportCmd(flags *globalFlags) *cobra.Command {
	var (
		output      string
		compression string
	)

	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Write an index to a compressed snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("output file is required, use -o flag")
			}
			return withDB(cmd, flags, func(db *pinelocal.DB) error {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				n, err := db.ExportIndex(cmd.Context(), args[0], f, func(o *pinelocal.ExportOptions) {
					o.Compression = compression
				})
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					_ = os.Remove(output)
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d vectors of '%s' to %s.\n", n, args[0], output)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "snapshot file to write")
	cmd.Flags().StringVar(&compression, "compression", pinelocal.CompressionZstd, "snapshot compression (zstd, lz4)")
	return cmd
}

func newIndexImportCmd(flags *globalFlags) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create an index from a snapshot",
		Long: `Create an index from a snapshot written by 'index export'.

The index keeps its exported name unless --name is given. Importing fails if
an index of that name already exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			return withDB(cmd, flags, func(db *pinelocal.DB) error {
				desc, err := db.ImportIndex(cmd.Context(), f, func(o *pinelocal.ImportOptions) {
					o.Name = name
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), desc)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "import under a different index name")
	return cmd
}
