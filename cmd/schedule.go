package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ethpandaops/schedeck/pkg/schedule"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

// scheduleCmd represents the schedule command group
//
//nolint:gochecknoglobals // Cobra commands are typically global
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Inspect the report step blocks of a deck",
	Long:  `Commands for listing, dumping and reporting the report step blocks built from the SCHEDULE section.`,
}

//nolint:gochecknoglobals // Cobra commands are typically global
var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "List the report step blocks",
	Long:  `List every report step block with its time type, start and end time, and keywords.`,
	RunE:  runScheduleBlocks,
}

//nolint:gochecknoglobals // Cobra commands are typically global
var secondsCmd = &cobra.Command{
	Use:   "seconds <step>",
	Short: "Print the seconds elapsed between the first block and a report step",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleSeconds,
}

//nolint:gochecknoglobals // Cobra commands are typically global
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the schedule in deck syntax",
	Long:  `Dump the schedule as DATES and keywords, one block after the other.`,
	RunE:  runScheduleDump,
}

//nolint:gochecknoglobals // Cobra commands are typically global
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a text report of the schedule",
	RunE:  runScheduleReport,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(blocksCmd)
	scheduleCmd.AddCommand(secondsCmd)
	scheduleCmd.AddCommand(dumpCmd)
	scheduleCmd.AddCommand(reportCmd)
}

func runScheduleBlocks(cmd *cobra.Command, _ []string) error {
	svc, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	defer closeEngine(svc)

	sched := svc.Schedule()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STEP\tTYPE\tSTART\tEND\tKEYWORDS")
	for step, block := range sched.All() {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			step, block.TimeType(), block.StartTime().Format(timeLayout), blockEnd(block), blockKeywords(block))
	}
	_ = w.Flush()

	if offset := sched.RestartOffset(); offset > 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nrestart offset: %d\n", offset)
	}

	return nil
}

func runScheduleSeconds(cmd *cobra.Command, args []string) error {
	step, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid report step %q: %w", args[0], err)
	}

	svc, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	defer closeEngine(svc)

	seconds, err := svc.Schedule().Seconds(step)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%.0f\n", seconds)

	return nil
}

func runScheduleDump(cmd *cobra.Command, _ []string) error {
	svc, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	defer closeEngine(svc)

	return svc.Schedule().DumpDeck(cmd.OutOrStdout())
}

func runScheduleReport(cmd *cobra.Command, _ []string) error {
	svc, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	defer closeEngine(svc)

	report, err := svc.ScheduleReport()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), report)

	return nil
}

func blockEnd(block *schedule.Block) string {
	end, ok := block.EndTime()
	if !ok {
		return "open"
	}

	return end.Format(timeLayout)
}

func blockKeywords(block *schedule.Block) string {
	keywords := block.Keywords()
	if len(keywords) == 0 {
		return "-"
	}

	names := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		names = append(names, kw.Name)
	}

	return strings.Join(names, " ")
}
