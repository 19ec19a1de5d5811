package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"progressive-quiz/internal/app"
	"progressive-quiz/internal/domain"
)

// withSession builds the runtime, restores saved progress and runs fn against it.
func withSession(ctx context.Context, configPath string, fn func(rt *runtime) error) error {
	rt, err := newRuntime(ctx, configPath, nil)
	if err != nil {
		return err
	}
	defer rt.Close()
	rt.engine.Restore(ctx, rt.session)

	err = fn(rt)
	switch {
	case errors.Is(err, domain.ErrNoProgress):
		return fmt.Errorf("%w: run `quiz init <name>` first", err)
	case errors.Is(err, domain.ErrProgressExists):
		return fmt.Errorf("%w: run `quiz reset` first", err)
	}
	return err
}

func NewInitCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init <name>",
		Short: "Start a new run; fails while progress is saved",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), *configPath, func(rt *runtime) error {
				progress, err := rt.engine.Initialize(cmd.Context(), rt.session, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s!\n\n", progress.Username)
				printDashboard(cmd.OutOrStdout(), app.BuildDashboard(progress))
				return nil
			})
		},
	}
}

func NewStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the level dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), *configPath, func(rt *runtime) error {
				dashboard, err := rt.engine.Dashboard(rt.session)
				if err != nil {
					return err
				}
				printDashboard(cmd.OutOrStdout(), dashboard)
				return nil
			})
		},
	}
}

func NewSelectCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "select <level>",
		Short: "Make an unlocked level the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := domain.ParseLevel(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), *configPath, func(rt *runtime) error {
				progress, err := rt.engine.SelectLevel(cmd.Context(), rt.session, level)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s selected, resume at question %d\n",
					level.Title(), progress.CurrentQuestion+1)
				return nil
			})
		},
	}
}

func NewQuestionCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "question <level> <index>",
		Short: "Print one question (index 0-4) without its answer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, index, err := parseLevelIndex(args[0], args[1])
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), *configPath, func(rt *runtime) error {
				q, err := rt.engine.Question(cmd.Context(), level, index)
				if err != nil {
					return err
				}
				printQuestion(cmd.OutOrStdout(), q.View(level, index))
				return nil
			})
		},
	}
}

func NewAnswerCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "answer <level> <index> <option>...",
		Short: "Answer a question with one or more option indices",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, index, err := parseLevelIndex(args[0], args[1])
			if err != nil {
				return err
			}
			selected := make([]int, 0, len(args)-2)
			for _, raw := range args[2:] {
				opt, err := strconv.Atoi(raw)
				if err != nil {
					return fmt.Errorf("invalid option %q: %w", raw, err)
				}
				selected = append(selected, opt)
			}
			return withSession(cmd.Context(), *configPath, func(rt *runtime) error {
				result, err := rt.engine.SubmitAnswer(cmd.Context(), rt.session, level, index, selected)
				if err != nil {
					return err
				}
				printAnswerResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
}

func NewAdvanceCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "advance",
		Short: "Move on to the next level, or finish when every level is answered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), *configPath, func(rt *runtime) error {
				decision, err := rt.engine.AdvanceOrFinish(cmd.Context(), rt.session)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case decision.OverallComplete:
					progress, err := rt.engine.Progress(rt.session)
					if err != nil {
						return err
					}
					score := *decision.AverageScore
					rating := app.RateScore(score, progress.Username)
					fmt.Fprintf(out, "%s\n%s\n", rating.Title, rating.Message)
					fmt.Fprintf(out, "Final score: %d%% (%d/%d correct)\n", score,
						app.CorrectOutOf(score), domain.LevelCount*domain.QuestionsPerLevel)
				case decision.Remain:
					fmt.Fprintf(out, "No level after %s; staying here\n", decision.NextLevel.Title())
				default:
					fmt.Fprintf(out, "Next level: %s\n", decision.NextLevel.Title())
				}
				return nil
			})
		},
	}
}

func NewResetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Erase saved progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), *configPath, func(rt *runtime) error {
				rt.engine.Reset(cmd.Context(), rt.session)
				fmt.Fprintln(cmd.OutOrStdout(), "Progress cleared")
				return nil
			})
		},
	}
}

func parseLevelIndex(rawLevel, rawIndex string) (domain.Level, int, error) {
	level, err := domain.ParseLevel(rawLevel)
	if err != nil {
		return 0, 0, err
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid question index %q: %w", rawIndex, err)
	}
	return level, index, nil
}

func printDashboard(w io.Writer, d domain.Dashboard) {
	fmt.Fprintf(w, "Player: %s   Current level: %s\n", d.Username, d.CurrentLevel.Title())
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tSTATUS\tANSWERED\tCORRECT\tNOTE")
	for _, lvl := range d.Levels {
		note := ""
		switch {
		case lvl.NeedMore > 0:
			note = fmt.Sprintf("need %d more correct", lvl.NeedMore)
		case lvl.Current:
			note = "current"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%d\t%s\n", lvl.Title, lvl.Status,
			lvl.Answered, domain.QuestionsPerLevel, lvl.CorrectCount, note)
	}
	tw.Flush()
	if d.TotalScore > 0 {
		fmt.Fprintf(w, "Total score: %d%%\n", d.TotalScore)
	}
}

func printQuestion(w io.Writer, q domain.QuestionView) {
	fmt.Fprintf(w, "%s %d/%d (%s)\n%s\n", q.Level.Title(), q.Index+1, q.Total, q.Mode, q.Text)
	for i, opt := range q.Options {
		fmt.Fprintf(w, "  [%d] %s\n", i, opt)
	}
}

func printAnswerResult(w io.Writer, r domain.AnswerResult) {
	if r.Correct {
		fmt.Fprintln(w, "Correct!")
	} else {
		fmt.Fprintf(w, "Incorrect. Correct options: %v\n", r.CorrectAnswers)
	}
	if r.Explanation != "" {
		fmt.Fprintln(w, r.Explanation)
	}
	if r.LevelDone {
		outcome := app.Evaluate(r.Progress, r.Level)
		fmt.Fprintf(w, "%s finished: %d/%d correct", r.Level.Title(), outcome.CorrectCount, domain.QuestionsPerLevel)
		if outcome.NeedMore > 0 {
			fmt.Fprintf(w, ", %d more needed to unlock the next level", outcome.NeedMore)
		}
		fmt.Fprintln(w)
	}
}
