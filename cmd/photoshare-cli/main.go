// Command photoshare-cli exercises the thumbnail pipeline against local
// files, without S3 or Lambda in the loop. Useful for tuning bounds and
// checking how a particular image will come out before uploading it.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/photoshare-app/photoshare/internal/imaging"
	"github.com/photoshare-app/photoshare/internal/naming"
)

var (
	thumbWidth  int
	thumbHeight int
	thumbOut    string
)

var rootCmd = &cobra.Command{
	Use:   "photoshare-cli",
	Short: "Local tools for the photo sharing thumbnail pipeline",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	},
}

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail <image>",
	Short: "Resize a local image the way the upload pipeline would",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		spec := imaging.Spec{MaxWidth: thumbWidth, MaxHeight: thumbHeight}
		deriv, err := imaging.Transcode(raw, spec)
		if err != nil {
			return fmt.Errorf("transcoding %s: %w", args[0], err)
		}

		out := thumbOut
		if out == "" {
			dir, base := filepath.Split(args[0])
			out = filepath.Join(dir, naming.DefaultPrefix+base)
		}
		if err := os.WriteFile(out, deriv.Bytes, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}

		fmt.Printf("%s: %dx%d %s (%d bytes) -> %s\n",
			args[0], deriv.Width, deriv.Height, deriv.Format, len(deriv.Bytes), out)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <image>",
	Short: "Print the capture metadata an upload would carry",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		info, err := imaging.ReadCaptureInfo(raw)
		if err != nil {
			return fmt.Errorf("reading metadata from %s: %w", args[0], err)
		}

		meta := info.Metadata()
		if len(meta) == 0 {
			fmt.Println("no capture metadata")
			return nil
		}
		for k, v := range meta {
			fmt.Printf("%s: %s\n", k, v)
		}
		return nil
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <key>...",
	Short: "Show how the pipeline would treat the given object keys",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		mapper := naming.NewMapper(naming.DefaultPrefix, "")
		for _, key := range args {
			class := mapper.Classify(key)
			switch class {
			case naming.Processable:
				fmt.Printf("%s: %s -> %s\n", key, class, mapper.DeriveKey(key))
			default:
				fmt.Printf("%s: %s\n", key, class)
			}
		}
	},
}

func init() {
	thumbnailCmd.Flags().IntVar(&thumbWidth, "width", 300, "maximum thumbnail width")
	thumbnailCmd.Flags().IntVar(&thumbHeight, "height", 300, "maximum thumbnail height")
	thumbnailCmd.Flags().StringVar(&thumbOut, "out", "", "output path (default: thumb- prefix beside the input)")

	rootCmd.AddCommand(thumbnailCmd, inspectCmd, classifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
