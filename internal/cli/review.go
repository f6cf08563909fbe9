// internal/cli/review.go
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flashcard_quiz/internal/config"
	"flashcard_quiz/internal/content"
	"flashcard_quiz/internal/model"
	"flashcard_quiz/internal/quiz"
	"flashcard_quiz/internal/service"
)

func newReviewCmd(a *app) *cobra.Command {
	var modeName string
	var noColor bool
	cmd := &cobra.Command{
		Use:   "review [collection]...",
		Short: "Review cards in the terminal",
		Long: `Start a review session over the named collections, or over every collection
when none are given. Press Enter to reveal the answer and Enter again for the next card.

Keys: [Enter] reveal / next  [f] flip  [n] next  [r] restart  [q] quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			ctx := contextOf(cmd)
			if len(args) > 0 {
				if err := a.library.Select(ctx, args); err != nil {
					return err
				}
			}
			if modeName != "" {
				mode, err := model.ParseReviewMode(modeName)
				if err != nil {
					return err
				}
				if err := a.library.SetMode(ctx, mode); err != nil {
					return err
				}
			}

			quizService := service.NewQuizService(a.library, nil, nil, a.logger)
			r := &reviewer{
				quiz:  quizService,
				in:    bufio.NewScanner(cmd.InOrStdin()),
				out:   cmd.OutOrStdout(),
				style: newReviewStyle(config.Cfg.App.Color && !noColor),
			}
			return r.run(cmd)
		},
	}
	cmd.Flags().StringVarP(&modeName, "mode", "m", "", "review mode ("+strings.Join(model.ReviewModeNames(), ", ")+"), saved for later sessions")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}

type reviewStyle struct {
	terminal *content.TerminalFormatter
	title    *color.Color
	side     *color.Color
	hint     *color.Color
	done     *color.Color
}

func newReviewStyle(colored bool) *reviewStyle {
	s := &reviewStyle{
		terminal: content.NewTerminalFormatter(colored),
		title:    color.New(color.Bold),
		side:     color.New(color.FgMagenta),
		hint:     color.New(color.FgHiBlack),
		done:     color.New(color.Bold, color.FgGreen),
	}
	for _, c := range []*color.Color{s.title, s.side, s.hint, s.done} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// reviewer は標準入力のコマンドでクイズセッションを進める
type reviewer struct {
	quiz  service.QuizService
	in    *bufio.Scanner
	out   io.Writer
	style *reviewStyle
}

func (r *reviewer) run(cmd *cobra.Command) error {
	ctx := contextOf(cmd)
	view, err := r.quiz.Start(ctx)
	if err != nil {
		return err
	}
	sid := view.SessionID

	for {
		r.render(view)
		if !r.in.Scan() {
			// 入力の終わりは終了扱い
			return r.quiz.Quit(ctx, sid)
		}

		var next *service.QuizView
		switch strings.ToLower(strings.TrimSpace(r.in.Text())) {
		case "":
			if view.State == quiz.StateFinished {
				continue
			}
			if view.Card != nil && view.Card.AnswerVisible {
				next, err = r.quiz.Next(ctx, sid)
			} else {
				next, err = r.quiz.Flip(ctx, sid)
			}
		case "f", "flip":
			next, err = r.quiz.Flip(ctx, sid)
		case "n", "next":
			next, err = r.quiz.Next(ctx, sid)
		case "r", "restart":
			next, err = r.quiz.Restart(ctx, sid)
		case "q", "quit":
			return r.quiz.Quit(ctx, sid)
		default:
			fmt.Fprintln(r.out, r.style.hint.Sprint("Unknown command. Use Enter, f, n, r or q."))
			continue
		}
		if err != nil {
			return err
		}
		view = next
	}
}

func (r *reviewer) render(view *service.QuizView) {
	if view.State == quiz.StateFinished {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.style.done.Sprintf("Finished! You reviewed %d items.", view.Total))
		fmt.Fprintln(r.out, r.style.hint.Sprint("[r] restart  [q] quit"))
		return
	}
	card := view.Card
	if card == nil {
		return
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.style.title.Sprintf("Item %d of %d  (%s)", view.Position, view.Total, card.Collection))
	fmt.Fprintln(r.out, r.style.side.Sprint(sideLabel(card.PromptSide)))
	fmt.Fprint(r.out, r.style.terminal.Entries(card.Prompt.Entries))
	if card.AnswerVisible && card.Answer != nil {
		fmt.Fprintln(r.out, r.style.side.Sprint(sideLabel(card.PromptSide.Opposite())))
		fmt.Fprint(r.out, r.style.terminal.Entries(card.Answer.Entries))
		fmt.Fprintln(r.out, r.style.hint.Sprint("[Enter] next  [f] hide answer  [r] restart  [q] quit"))
		return
	}
	fmt.Fprintln(r.out, r.style.hint.Sprint("[Enter] show answer  [n] next  [r] restart  [q] quit"))
}

func sideLabel(s model.Side) string {
	if s == model.SideBack {
		return "Back"
	}
	return "Front"
}
