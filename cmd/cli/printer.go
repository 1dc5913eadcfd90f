package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tphakala/hogwarts-heroes/internal/character"
	"github.com/tphakala/hogwarts-heroes/internal/quiz"
)

// Printer renders command results as aligned text or indented JSON.
type Printer struct {
	w    io.Writer
	json bool
}

// NewPrinter creates a Printer on w.
func NewPrinter(w io.Writer, asJSON bool) *Printer {
	return &Printer{w: w, json: asJSON}
}

// JSON writes v as indented JSON regardless of mode.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Summaries prints a character list.
func (p *Printer) Summaries(list []character.Summary) error {
	if p.json {
		if list == nil {
			list = []character.Summary{}
		}
		return p.JSON(list)
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tIMAGE")
	for _, s := range list {
		image := "-"
		if s.Image != nil {
			image = *s.Image
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Name, image)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, "\n%d characters\n", len(list))
	return err
}

// Detail prints one character.
func (p *Printer) Detail(d *character.Detail) error {
	if p.json {
		return p.JSON(d)
	}

	aliases := "-"
	if len(d.AliasNames) > 0 {
		aliases = strings.Join(d.AliasNames, ", ")
	}
	image := "-"
	if d.Image != nil {
		image = *d.Image
	}

	return p.fields([][2]string{
		{"id", d.ID},
		{"name", d.Name},
		{"house", d.House},
		{"patronus", d.Patronus},
		{"species", d.Species},
		{"blood_status", d.BloodStatus},
		{"gender", d.Gender},
		{"born", d.Born},
		{"died", d.Died},
		{"alias_names", aliases},
		{"wiki", d.Wiki},
		{"image", image},
	})
}

// CacheStatus prints the cache state.
func (p *Printer) CacheStatus(s character.CacheStatus) error {
	if p.json {
		return p.JSON(s)
	}

	cachedAt, age := "never", "-"
	if s.Timestamp != nil {
		cachedAt = s.Timestamp.Local().Format("2006-01-02 15:04:05 MST")
		age = s.Age
	}
	return p.fields([][2]string{
		{"count", fmt.Sprint(s.Count)},
		{"cached_at", cachedAt},
		{"age", age},
		{"ttl", s.TTL},
		{"fresh", fmt.Sprint(s.Fresh)},
	})
}

// Fields prints the filterable attribute names, one per line.
func (p *Printer) Fields(fields []string) error {
	if p.json {
		return p.JSON(fields)
	}
	for _, f := range fields {
		if _, err := fmt.Fprintln(p.w, f); err != nil {
			return err
		}
	}
	return nil
}

// Questions prints quiz questions with lettered options.
func (p *Printer) Questions(questions []quiz.Question, withAnswers bool) error {
	if p.json {
		return p.JSON(questions)
	}
	for i, q := range questions {
		if err := p.Question(i+1, q); err != nil {
			return err
		}
		if withAnswers {
			fmt.Fprintf(p.w, "   answer: %s\n", q.Answer)
		}
		fmt.Fprintln(p.w)
	}
	return nil
}

// Question prints a single numbered question.
func (p *Printer) Question(n int, q quiz.Question) error {
	if _, err := fmt.Fprintf(p.w, "%d. %s\n", n, q.Question); err != nil {
		return err
	}
	for i, opt := range q.Options {
		fmt.Fprintf(p.w, "   %c) %s\n", 'a'+i, opt)
	}
	return nil
}

// fields prints label/value rows with title-cased labels.
func (p *Printer) fields(rows [][2]string) error {
	title := cases.Title(language.English)
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		label := title.String(strings.ReplaceAll(row[0], "_", " "))
		fmt.Fprintf(tw, "%s:\t%s\n", label, row[1])
	}
	return tw.Flush()
}
