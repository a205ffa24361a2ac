package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartdatalake/osmwrangle/classification"
	"github.com/smartdatalake/osmwrangle/config"
	"github.com/smartdatalake/osmwrangle/filter"
	"github.com/smartdatalake/osmwrangle/rdf"
	"github.com/smartdatalake/osmwrangle/transform"
)

var (
	classifyOpts  *config.Options
	classifyPrint bool
	filterOpts    *config.Options
)

var classifyCmd = &cobra.Command{
	Use:   "classify CLASSIFICATION",
	Short: "Write the categories of a classification as triples",
	Long: `Parse a YAML or CSV classification and write the triples of all
categories. With --print the parsed hierarchy is written as indented text
instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

var filterClassificationCmd = &cobra.Command{
	Use:   "filter-classification FILTERS",
	Short: "Derive a CSV classification from the categories of a filter file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilterClassification,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyOpts = config.AddClassificationFlags(classifyCmd.Flags())
	classifyCmd.Flags().BoolVar(&classifyPrint, "print", false, "print the hierarchy instead of triples")

	rootCmd.AddCommand(filterClassificationCmd)
	filterOpts = config.AddClassificationFlags(filterClassificationCmd.Flags())
}

// output returns the writer for fname, - is stdout.
func output(cmd *cobra.Command, fname string) (io.WriteCloser, error) {
	if fname == "" || fname == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	return os.Create(fname)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func runClassify(cmd *cobra.Command, args []string) error {
	if err := classifyOpts.LoadClassification(); err != nil {
		return err
	}
	setupLogging(classifyOpts.Quiet)

	h, err := classification.ParseFile(args[0], classification.Options{
		ClassifyByName: classifyOpts.ClassifyByName,
	})
	if err != nil {
		return err
	}
	out, err := output(cmd, classifyOpts.Output)
	if err != nil {
		return err
	}

	if classifyPrint {
		if err := h.WriteYAML(out); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	}

	gen, err := transform.NewGenerator(transform.Config{
		OntologyNS:       classifyOpts.Namespaces.Ontology,
		ClassNS:          classifyOpts.Namespaces.Class,
		ClassificationNS: classifyOpts.Namespaces.Classification,
		FeatureSource:    classifyOpts.FeatureSource,
	}, nil, nil, nil)
	if err != nil {
		out.Close()
		return err
	}
	nw := rdf.NewNTriplesWriter(out)
	if err := nw.Write(gen.CategoryTriples(h)); err != nil {
		nw.Close()
		return err
	}
	return nw.Close()
}

func runFilterClassification(cmd *cobra.Command, args []string) error {
	if err := filterOpts.LoadClassification(); err != nil {
		return err
	}
	setupLogging(filterOpts.Quiet)

	forest, err := filter.ParseFile(args[0])
	if err != nil {
		return err
	}
	out, err := output(cmd, filterOpts.Output)
	if err != nil {
		return err
	}
	if err := classification.WriteFilterCSV(out, forest); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
