// Package quiz implements the quiz command.
package quiz

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/hogwarts-heroes/cmd/cli"
	"github.com/tphakala/hogwarts-heroes/internal/quiz"
)

// Command creates the quiz command.
func Command(env *cli.Env) *cobra.Command {
	var (
		count       int
		play        bool
		showAnswers bool
	)

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Print or play Harry Potter trivia questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.Require()
			if err != nil {
				return err
			}
			bank, err := a.QuizBank()
			if err != nil {
				return err
			}

			questions := bank.Random(count, nil)
			if !play {
				return env.Printer(cmd).Questions(questions, showAnswers)
			}

			score, err := Play(cmd.InOrStdin(), env.Printer(cmd), cmd.OutOrStdout(), questions)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Score: %d/%d\n", score, len(questions))
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "number", "n", 5, "Number of questions, 0 for all")
	cmd.Flags().BoolVar(&play, "play", false, "Ask the questions and read answers from stdin")
	cmd.Flags().BoolVar(&showAnswers, "answers", false, "Include the answers when printing")

	return cmd
}

// Play asks each question and reads one answer line per question. An
// answer may be the option text or its letter. End of input stops early.
func Play(in io.Reader, p *cli.Printer, out io.Writer, questions []quiz.Question) (int, error) {
	scanner := bufio.NewScanner(in)
	score := 0

	for i, q := range questions {
		if err := p.Question(i+1, q); err != nil {
			return score, err
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}

		answer := resolveLetter(strings.TrimSpace(scanner.Text()), q.Options)
		if quiz.Check(q, answer) {
			score++
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Wrong, the answer is %s.\n", q.Answer)
		}
		fmt.Fprintln(out)
	}
	return score, scanner.Err()
}

// resolveLetter maps a single option letter to its option text.
func resolveLetter(answer string, options []string) string {
	if len(answer) != 1 {
		return answer
	}
	idx := int(strings.ToLower(answer)[0] - 'a')
	if idx >= 0 && idx < len(options) {
		return options[idx]
	}
	return answer
}
