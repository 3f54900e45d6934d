package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	statsHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"})
	statsKey    = lipgloss.NewStyle().Faint(true)

	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cm, err := newCacheManager()
			if err != nil {
				return err
			}

			stats := cm.ComprehensiveStats()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, statsHeader.Render("Memory tier"))
			fmt.Fprintf(out, "  %s %d (%d active, %d expired)\n",
				statsKey.Render("entries"), stats.Memory.TotalEntries,
				stats.Memory.ActiveEntries, stats.Memory.ExpiredEntries)
			fmt.Fprintf(out, "  %s %d\n", statsKey.Render("max entries"), stats.Memory.MaxEntries)
			fmt.Fprintf(out, "  %s %s\n", statsKey.Render("approx size"),
				humanize.Bytes(uint64(stats.Memory.MemoryUsageBytes))) //nolint:gosec

			fmt.Fprintln(out, statsHeader.Render("Disk tier"))
			fmt.Fprintf(out, "  %s %d\n", statsKey.Render("files"), stats.Disk.TotalFiles)
			fmt.Fprintf(out, "  %s %.2f MB of %d MB (%.1f%%)\n", statsKey.Render("size"),
				stats.Disk.TotalSizeMB, stats.Disk.MaxSizeMB, stats.Disk.UsagePercentage)

			fmt.Fprintln(out, statsHeader.Render("Image tier"))
			fmt.Fprintf(out, "  %s %d (%d official artwork)\n", statsKey.Render("images"),
				stats.Images.TotalImages, stats.Images.OfficialArtworkCount)
			fmt.Fprintf(out, "  %s %.2f MB\n", statsKey.Render("size"), stats.Images.TotalSizeMB)

			fmt.Fprintf(out, "\n%s %s\n", statsKey.Render("snapshot"),
				stats.Timestamp.Format("2006-01-02 15:04:05"))
			return nil
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry and image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cm, err := newCacheManager()
			if err != nil {
				return err
			}
			if err := cm.ClearAll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}

	cacheClearExpiredCmd = &cobra.Command{
		Use:   "clear-expired",
		Short: "Remove expired and corrupted cache files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cm, err := newCacheManager()
			if err != nil {
				return err
			}
			removed := cm.ClearExpired()
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired cache files.\n", removed.FilesCleared)
			return nil
		},
	}
)

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cacheClearExpiredCmd)
}
