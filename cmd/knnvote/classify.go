package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/knnvote/internal/domain/dataset"
	"github.com/kailas-cloud/knnvote/internal/report"
	"github.com/kailas-cloud/knnvote/internal/repository/datasetfile"
	classifyuc "github.com/kailas-cloud/knnvote/internal/usecase/classify"
)

const defaultK = 5

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify --dataset NAME|FILE --query x,y,...",
		Short: "Classify one query against a dataset",
		Long: `Classify loads a built-in dataset by name or a .yaml/.toml dataset file
and prints the vote fraction of each class among the k nearest neighbors`,
		Args: cobra.NoArgs,
		RunE: runClassify,
	}
	cmd.Flags().String("dataset", "", "built-in dataset name or path to a dataset file")
	cmd.Flags().Int("k", defaultK, "number of neighbors")
	cmd.Flags().String("query", "", "comma-separated query features")
	cmd.Flags().Bool("explain", false, "also print the voting neighbors")
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	source, err := cmd.Flags().GetString("dataset")
	if err != nil {
		return fmt.Errorf("failed to get dataset flag: %w", err)
	}
	k, err := cmd.Flags().GetInt("k")
	if err != nil {
		return fmt.Errorf("failed to get k flag: %w", err)
	}
	rawQuery, err := cmd.Flags().GetString("query")
	if err != nil {
		return fmt.Errorf("failed to get query flag: %w", err)
	}
	explain, err := cmd.Flags().GetBool("explain")
	if err != nil {
		return fmt.Errorf("failed to get explain flag: %w", err)
	}
	colored, err := useColor(cmd)
	if err != nil {
		return err
	}

	query, err := parseQuery(rawQuery)
	if err != nil {
		return err
	}

	reg, name, err := resolveDataset(source)
	if err != nil {
		return err
	}

	svc := classifyuc.New(reg, nil, classifyuc.Limits{DefaultK: defaultK})
	out, err := svc.Classify(cmd.Context(), name, classifyuc.Request{K: k, Query: query})
	if err != nil {
		return err
	}

	if err := report.New(cmd.OutOrStdout(), report.WithColor(colored)).Report(out.Labels(), out.Fractions()); err != nil {
		return err
	}
	if explain {
		for _, n := range out.Neighbors {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "  #%d %s d=%g\n", n.Index, n.Label, n.Distance); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseQuery reads "x,y,..." into features.
func parseQuery(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("invalid query %q: empty feature", raw)
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid query %q: %w", raw, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// resolveDataset treats an existing path as a dataset file and anything else
// as a built-in dataset name.
func resolveDataset(source string) (*dataset.Registry, string, error) {
	reg := dataset.NewRegistry()

	if _, err := os.Stat(source); err == nil {
		d, err := datasetfile.Load(source)
		if err != nil {
			return nil, "", err
		}
		if err := reg.Register(d); err != nil {
			return nil, "", err
		}
		return reg, d.Name(), nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("stat %s: %w", source, err)
	}

	builtin, err := dataset.Builtin()
	if err != nil {
		return nil, "", err
	}
	for _, d := range builtin {
		if err := reg.Register(d); err != nil {
			return nil, "", err
		}
	}
	return reg, source, nil
}
