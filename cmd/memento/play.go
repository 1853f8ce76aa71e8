package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendant/memento/pkg/memento/game/eventloop"
	"github.com/tendant/memento/pkg/memento/game/matching"
	"github.com/tendant/memento/pkg/memento/game/quiz"
)

// NewPlayCommand creates the play command and its games
func NewPlayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a memory game in the terminal",
	}
	cmd.AddCommand(newQuizCommand())
	cmd.AddCommand(newMatchCommand())
	return cmd
}

func newQuizCommand() *cobra.Command {
	var bank string

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Answer the memory quiz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			questions := quiz.DefaultQuestions()
			if bank != "" {
				loaded, err := quiz.LoadFile(bank)
				if err != nil {
					return err
				}
				questions = loaded
			}

			q, err := quiz.New(questions)
			if err != nil {
				return err
			}
			return playQuiz(q, bufio.NewScanner(cmd.InOrStdin()), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&bank, "questions", "", "YAML question bank (default: built-in questions)")
	return cmd
}

func playQuiz(q *quiz.Quiz, in *bufio.Scanner, out io.Writer) error {
	for {
		question, ok := q.Current()
		if !ok {
			break
		}

		fmt.Fprintf(out, "\n%s\n%s\n", q.Progress(), question.Prompt)
		for i, option := range question.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, option)
		}

		choice, err := readChoice(in, out, len(question.Options))
		if err != nil {
			return err
		}
		correct, err := q.Answer(question.Options[choice])
		if err != nil {
			return err
		}
		if correct {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintln(out, "Not quite.")
		}
	}

	summary := q.Summary()
	fmt.Fprintf(out, "\nQuiz Complete!\nScore: %d/%d\n%s\n", summary.Score, summary.Total, summary.Message)
	return nil
}

func newMatchCommand() *cobra.Command {
	var symbols []string
	var seed uint64
	var pause time.Duration

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Find the matching pairs of cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clock := eventloop.NewManual()
			opts := []matching.Option{}
			if len(symbols) > 0 {
				opts = append(opts, matching.WithSymbols(symbols...))
			}
			if seed != 0 {
				opts = append(opts, matching.WithShuffler(rand.New(rand.NewPCG(seed, seed))))
			}
			game := matching.NewGame(clock, opts...)

			return playMatch(game, clock, pause, bufio.NewScanner(cmd.InOrStdin()), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVar(&symbols, "symbols", nil, "card faces to use (default: eight emoji)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "shuffle seed (default: random)")
	cmd.Flags().DurationVar(&pause, "pause", time.Second, "how long a revealed pair stays visible")
	return cmd
}

// playMatch drives the game on a manual clock. After a pair is revealed the
// board is shown for pause and then the clock is advanced past the delay.
func playMatch(game *matching.Game, clock *eventloop.Manual, pause time.Duration, in *bufio.Scanner, out io.Writer) error {
	for {
		view := matching.NewView(game.Snapshot())
		if view.Complete {
			fmt.Fprintln(out, view.Message)
			return nil
		}

		renderBoard(out, view)
		choice, err := readChoice(in, out, len(view.Cards))
		if err != nil {
			return err
		}
		if !game.Click(choice) {
			fmt.Fprintln(out, "That card is already face up.")
			continue
		}

		if game.Snapshot().Phase() == matching.PhaseEvaluating {
			renderBoard(out, matching.NewView(game.Snapshot()))
			if pause > 0 {
				time.Sleep(pause)
			}
			clock.Flush()
		}
	}
}

func renderBoard(out io.Writer, view matching.View) {
	var b strings.Builder
	for i, card := range view.Cards {
		face := "??"
		if card.Revealed || card.Matched {
			face = card.Value
		}
		fmt.Fprintf(&b, "%2d:[%s] ", i+1, face)
		if (i+1)%4 == 0 {
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(out, "\n%sMoves: %d\n", strings.TrimRight(b.String(), " "), view.Moves)
}

// readChoice reads a 1-based choice and returns it 0-based.
func readChoice(in *bufio.Scanner, out io.Writer, n int) (int, error) {
	for {
		fmt.Fprintf(out, "Choose 1-%d: ", n)
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return 0, err
			}
			return 0, io.ErrUnexpectedEOF
		}
		choice, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err == nil && choice >= 1 && choice <= n {
			return choice - 1, nil
		}
		fmt.Fprintln(out, "Please enter a number from the list.")
	}
}
