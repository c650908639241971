package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/knnvote/internal/version"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newRootCmd assembles the command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "knnvote",
		Short:         "k-nearest-neighbors vote classifier",
		Long:          `knnvote classifies feature vectors by the class shares of their k nearest training objects`,
		Version:       version.Version,
		SilenceUsage:  true,
	}

	root.PersistentFlags().String("color", "off", "colorize class labels (auto|on|off)")

	root.AddCommand(newDemoCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// useColor resolves the --color flag; auto follows terminal detection.
func useColor(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return !color.NoColor, nil
	default:
		return false, fmt.Errorf("unknown color mode: %s", mode)
	}
}
