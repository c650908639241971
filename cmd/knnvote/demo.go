package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/knnvote/internal/domain/point"
	"github.com/kailas-cloud/knnvote/internal/domain/wood"
	"github.com/kailas-cloud/knnvote/internal/fixtures"
	"github.com/kailas-cloud/knnvote/internal/knn"
	"github.com/kailas-cloud/knnvote/internal/report"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Classify the two reference scenarios",
		Long:  `Demo classifies the planar clusters and the wood defect samples and prints one "<label>: <fraction>" line per class`,
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}
}

func runDemo(cmd *cobra.Command, _ []string) error {
	colored, err := useColor(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	rep := report.New(out, report.WithColor(colored))

	c := fixtures.Clusters()
	res, err := knn.Classify(c.K, len(c.Classes), c.Objects, c.Mapping, c.Query, point.Distance)
	if err != nil {
		return fmt.Errorf("classify %s: %w", c.Name, err)
	}
	if err := section(out, c.Name, c.K, c.Query.String()); err != nil {
		return err
	}
	if err := rep.Report(c.Classes, res); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}

	w := fixtures.WoodDefects()
	res, err = knn.Classify(w.K, len(w.Classes), w.Objects, w.Mapping, w.Query, wood.Distance)
	if err != nil {
		return fmt.Errorf("classify %s: %w", w.Name, err)
	}
	query := fmt.Sprintf("crack=%g knot=%g", w.Query.CrackLength, w.Query.KnotDiameter)
	if err := section(out, w.Name, w.K, query); err != nil {
		return err
	}
	return rep.Report(w.Classes, res)
}

func section(w io.Writer, name string, k int, query string) error {
	_, err := fmt.Fprintf(w, "# %s k=%d query %s\n", name, k, query)
	return err
}
