package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartdatalake/osmwrangle/config"
	"github.com/smartdatalake/osmwrangle/import_"
)

var transformOpts *config.Options

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Transform an OSM PBF file to RDF triples",
	Long: `Read an OSM PBF file, keep all nodes, ways and relations that match the
filters and write their attributes and geometries as N-Triples.

The input is read twice. The first pass collects the ids of all elements
that are needed to build way and relation geometries, the second pass
builds the records and hands them to the transformation workers.`,
	Args: cobra.NoArgs,
	RunE: runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)
	transformOpts = config.AddTransformFlags(transformCmd.Flags())
}

func runTransform(cmd *cobra.Command, args []string) error {
	if err := transformOpts.Load(); err != nil {
		return err
	}
	setupLogging(transformOpts.Quiet)

	res, err := import_.Transform(cmd.Context(), transformOpts)
	if err != nil {
		return err
	}
	printSummary(cmd.ErrOrStderr(), res)
	return nil
}

func printSummary(w io.Writer, res *import_.Result) {
	fmt.Fprintf(w, "Input data from:     %s\n", res.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Parsed:              %d nodes, %d ways, %d relations\n", res.Nodes, res.Ways, res.Relations)
	fmt.Fprintf(w, "Records:             %d\n", res.Records)
	fmt.Fprintf(w, "Rejected:            %d\n", res.Rejected)
	fmt.Fprintf(w, "Deferred relations:  %d (%d retried)\n", res.Deferred, res.Retried)
	fmt.Fprintf(w, "Triples:             %d\n", res.Triples)
	if res.HasBound {
		fmt.Fprintf(w, "Bounding box:        %f %f, %f %f\n",
			res.Bound.Min.Lon(), res.Bound.Min.Lat(), res.Bound.Max.Lon(), res.Bound.Max.Lat())
	}
	if len(res.Attributes) > 0 {
		fmt.Fprintln(w, "Attributes:")
		for _, a := range res.Attributes {
			fmt.Fprintf(w, "  %-30s %d\n", a.Key, a.Count)
		}
	}
}
