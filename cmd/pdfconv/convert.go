package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/RavinduThilinaka/pdf-conventor/internal/domain"
	"github.com/RavinduThilinaka/pdf-conventor/internal/pdf"
)

type convertFlags struct {
	output      string
	pageSize    string
	orientation string
	policy      string
	marginMm    float64
}

func newConvertCmd() *cobra.Command {
	flags := convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert [flags] <image files...>",
		Short: "Convert image files into a single PDF",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, flags)
		},
	}

	defaults := domain.DefaultLayout()
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default images.pdf)")
	cmd.Flags().StringVar(&flags.pageSize, "page-size", string(defaults.PageSize), "page size: A4, Letter, Legal or A3")
	cmd.Flags().StringVar(&flags.orientation, "orientation", string(defaults.Orientation), "page orientation: portrait or landscape")
	cmd.Flags().StringVar(&flags.policy, "policy", string(defaults.Policy), "image sizing: fit, fill or original")
	cmd.Flags().Float64Var(&flags.marginMm, "margin", defaults.MarginMm, "page margin in millimeters (0-50)")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string, flags convertFlags) error {
	cfg := domain.LayoutConfig{
		PageSize:    domain.PageSize(flags.pageSize),
		Orientation: domain.Orientation(flags.orientation),
		Policy:      domain.SizingPolicy(flags.policy),
		MarginMm:    flags.marginMm,
	}

	output := flags.output
	if output == "" {
		output = domain.DefaultLayout().Filename()
	}
	base := filepath.Base(output)
	cfg.BaseName = base[:len(base)-len(filepath.Ext(base))]

	if err := cfg.Validate(); err != nil {
		return err
	}

	entries, err := loadEntries(args, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("none of the given files is a supported image type")
	}

	generator := pdf.New(clockwork.NewRealClock(), 0)
	onProgress := func(percent int) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\rconverting... %3d%%", percent)
	}

	result, err := generator.Generate(cmd.Context(), entries, cfg, onProgress)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr())
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr())

	if err := os.WriteFile(output, result.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d pages, %d bytes)\n", output, result.Pages, len(result.Data))
	return nil
}

// loadEntries reads the given files, skipping any whose extension does not
// map to a supported image type. Skips are reported on stderr, unreadable
// files abort the run.
func loadEntries(paths []string, stderr io.Writer) ([]domain.ImageEntry, error) {
	entries := make([]domain.ImageEntry, 0, len(paths))
	for _, path := range paths {
		contentType := mime.TypeByExtension(filepath.Ext(path))
		kind, ok := domain.KindFromContentType(contentType)
		if !ok {
			fmt.Fprintf(stderr, "skipping %s: unsupported file type\n", path)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		entries = append(entries, domain.ImageEntry{
			ID:          uuid.New(),
			DisplayName: filepath.Base(path),
			Kind:        kind,
			Data:        data,
			SizeBytes:   int64(len(data)),
		})
	}
	return entries, nil
}
