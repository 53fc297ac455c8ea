package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:           "clipscout",
		Short:         "Find viral clip candidates in video transcripts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	analyze := &cobra.Command{
		Use:   "analyze [video-url]",
		Short: "Analyze a YouTube video or a local SRT file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			return runAnalyze(cmd, url)
		},
	}
	analyze.Flags().String("srt", "", "Analyze a local SRT file instead of a video URL")
	analyze.Flags().String("platform", "", "Target platform (YouTube Shorts, Instagram Reels, TikTok)")
	analyze.Flags().String("out", "", "Write analysis JSON here instead of stdout")
	analyze.Flags().Bool("cut", false, "Cut every ranked clip from a local media file")
	analyze.Flags().String("input", "", "Local media file for --cut and generated commands")
	analyze.Flags().String("clips-dir", "clips", "Output directory for cut clips")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP analysis API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
	serve.Flags().String("addr", "", "Listen address (default :8080, or PORT from the environment)")

	root.AddCommand(analyze, serve)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
