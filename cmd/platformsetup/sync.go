package main

import (
	"bufio"
	"os"

	"github.com/alfredjeanlab/platformsetup/internal/export"
	"github.com/alfredjeanlab/platformsetup/internal/setup"
	"github.com/spf13/cobra"
)

var (
	pushFolder string
	pullFolder string
)

var pushCmd = &cobra.Command{
	Use:     "push",
	Short:   "Replace the stored configuration with the current folder",
	GroupID: "sync",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if pushFolder != "" {
			return engine.PushFolder(cmd.Context(), pushFolder)
		}
		return engine.Push(cmd.Context())
	},
}

var pullCmd = &cobra.Command{
	Use:     "pull",
	Short:   "Replace the current folder with the stored configuration",
	GroupID: "sync",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if pullFolder != "" {
			return engine.PullFolder(cmd.Context(), pullFolder)
		}
		return engine.Pull(cmd.Context())
	},
}

var exportCmd = &cobra.Command{
	Use:     "export [file]",
	Short:   "Write a JSONL snapshot of the stored configuration",
	Long:    "Write a JSONL snapshot of the stored configuration to file (stdout when omitted), then to the configured S3 and git destinations.",
	GroupID: "sync",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		exists, err := platform.TablesExist(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return setup.ErrPlatformNotInitialized
		}

		var dests []export.Destination
		if cfg.ExportS3Bucket != "" {
			d, err := export.NewS3Destination(ctx, export.S3Options{
				Bucket:   cfg.ExportS3Bucket,
				Key:      cfg.ExportS3Key,
				Region:   cfg.ExportS3Region,
				Endpoint: cfg.ExportS3Endpoint,
			})
			if err != nil {
				return err
			}
			dests = append(dests, d)
		}
		if cfg.ExportGitRepo != "" {
			dests = append(dests, export.NewGitDestination(cfg.ExportGitRepo, cfg.ExportGitFile, cfg.ExportGitBranch))
		}

		if len(args) == 0 {
			w := bufio.NewWriter(os.Stdout)
			err := export.Run(ctx, platform, w, dests, logger)
			if flushErr := w.Flush(); err == nil {
				err = flushErr
			}
			return err
		}

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		if err := export.Run(ctx, platform, f, dests, logger); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

func init() {
	pushCmd.Flags().StringVar(&pushFolder, "folder", "", "push this folder instead of the current folder")
	pullCmd.Flags().StringVar(&pullFolder, "folder", "", "pull into this folder instead of the current folder")
}
