package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/catalog"
	"github.com/abhisek/edulearn/internal/summary"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		lessons := d.progress.Load(ctx, d.lessonsKey)
		quizzes := d.progress.Load(ctx, d.quizzesKey)
		out := cmd.OutOrStdout()

		learner := summary.ForLearner(lessons, quizzes)
		fmt.Fprintln(out, "Overview")
		fmt.Fprintln(out, strings.Repeat("─", 48))
		fmt.Fprintf(out, "%-20s  %d/%d\n", "Lessons completed", learner.CompletedLessons, learner.TotalLessons)
		fmt.Fprintf(out, "%-20s  %d\n", "Quizzes completed", learner.CompletedQuizzes)
		fmt.Fprintf(out, "%-20s  %d%%\n", "Average score", learner.AverageScore)

		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-28s  %9s  %5s\n", "Course", "Lessons", "Done")
		fmt.Fprintln(out, strings.Repeat("─", 48))
		for _, c := range summary.ForCourses(catalog.Courses(), lessons) {
			fmt.Fprintf(out, "%-28s  %4d/%-4d  %4d%%\n", c.Title, c.Completed, c.Total, c.Percent)
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-28s  %9s  %5s  %s\n", "Quiz track", "Quizzes", "Avg", "Next")
		fmt.Fprintln(out, strings.Repeat("─", 72))
		for _, t := range catalog.QuizTracks() {
			s := summary.ForQuizzes(catalog.QuizzesFor(t), quizzes)
			fmt.Fprintf(out, "%-28s  %4d/%-4d  %4d%%  %s\n", t.Title, s.Completed, s.Total, s.Average, s.Next)
		}

		if d.client == nil || d.tokens.Token(ctx) == "" {
			return nil
		}
		stats, err := d.client.LearnerStats(ctx)
		if err != nil {
			fmt.Fprintf(out, "\nServer stats unavailable: %s\n", api.Message(err, "request failed"))
			return nil
		}
		printServerStats(out, stats)
		return nil
	},
}

func printServerStats(out io.Writer, s api.LearnerStats) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Server")
	fmt.Fprintln(out, strings.Repeat("─", 48))
	fmt.Fprintf(out, "%-20s  %d/%d\n", "Lessons completed", s.CompletedLessons, s.TotalLessons)
	fmt.Fprintf(out, "%-20s  %d\n", "Quizzes passed", s.QuizzesPassed)
	fmt.Fprintf(out, "%-20s  %d\n", "Quiz attempts", s.TotalQuizAttempts)
	fmt.Fprintf(out, "%-20s  %.0f%%\n", "Success rate", s.SuccessRate)
}
