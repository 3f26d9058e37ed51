package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/auth"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Manage server quizzes",
}

var quizCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a quiz from a JSON file",
	Long: `Publish a quiz to the server. Instructor and admin accounts only.

The file holds the quiz as JSON:

  {
    "lesson": "<lesson id>",
    "title": "SQL Joins",
    "passingScore": 70,
    "questions": [
      {"questionText": "Combines rows?", "options": ["WHERE", "JOIN"], "correctOptionIndex": 1, "points": 1}
    ]
  }

passingScore defaults to 70 and points to 1. Use --file - to read stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		lessonID, _ := cmd.Flags().GetString("lesson")
		inactive, _ := cmd.Flags().GetBool("inactive")

		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireServer(); err != nil {
			return err
		}
		u, ok := d.tokens.User(cmd.Context())
		if !ok || d.tokens.Token(cmd.Context()) == "" {
			return errors.New("sign in first with edulearn login")
		}
		if auth.LandingFor(u.Role) == auth.LandingLearner {
			return errors.New("only instructor and admin accounts can create quizzes")
		}

		draft, err := readDraft(cmd, file)
		if err != nil {
			return err
		}
		if lessonID != "" {
			draft.Lesson = lessonID
		}
		if inactive {
			draft.IsActive = false
		}
		draft.Normalize()
		if err := auth.Validate(draft); err != nil {
			return accountError(err, "Invalid quiz.")
		}

		q, err := d.client.CreateQuiz(cmd.Context(), draft)
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "Failed to create quiz."))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Quiz created: %s (%s), %d questions.\n", q.Title, q.ID, len(q.Questions))
		return nil
	},
}

// readDraft decodes a quiz draft from path, or stdin when path is "-".
func readDraft(cmd *cobra.Command, path string) (api.QuizDraft, error) {
	draft := api.QuizDraft{PassingScore: 70, IsActive: true}

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return draft, fmt.Errorf("open quiz file: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&draft); err != nil {
		return draft, fmt.Errorf("decode quiz file: %w", err)
	}
	return draft, nil
}

func init() {
	quizCreateCmd.Flags().StringP("file", "f", "", "Quiz JSON file, or - for stdin")
	quizCreateCmd.Flags().String("lesson", "", "Lesson id (overrides the file)")
	quizCreateCmd.Flags().Bool("inactive", false, "Publish the quiz hidden from learners")
	_ = quizCreateCmd.MarkFlagRequired("file")

	quizCmd.AddCommand(quizCreateCmd)
}
