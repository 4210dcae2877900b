package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"StockPredictor/internal/forecast"
	"StockPredictor/internal/pipeline"
	"StockPredictor/internal/report"
)

// Console is the interactive prediction loop.
type Console struct {
	Registry *pipeline.Registry
	Location *time.Location
	In       io.Reader
	Out      io.Writer
}

func New(reg *pipeline.Registry, loc *time.Location, in io.Reader, out io.Writer) *Console {
	return &Console{Registry: reg, Location: loc, In: in, Out: out}
}

// ChoicePrompt lists the symbols as "a, b or c".
func ChoicePrompt(names []string) string {
	var list string
	switch len(names) {
	case 0:
	case 1:
		list = names[0]
	default:
		list = strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
	}
	return fmt.Sprintf("Choose from %s to predict stock price: ", list)
}

// Run prompts for a symbol and a date until the user answers "n" or input ends.
func (c *Console) Run() error {
	sc := bufio.NewScanner(c.In)
	prompt := ChoicePrompt(c.Registry.Names())

	for {
		stock, ok := c.askStock(sc, prompt)
		if !ok {
			return sc.Err()
		}

		if !c.askDate(sc, stock) {
			return sc.Err()
		}

		fmt.Fprintln(c.Out, "Do you want to perform other stock price prediction (y/n)?")
		if !sc.Scan() {
			return sc.Err()
		}
		if strings.EqualFold(strings.TrimSpace(sc.Text()), "n") {
			return nil
		}
	}
}

func (c *Console) askStock(sc *bufio.Scanner, prompt string) (pipeline.Stock, bool) {
	for {
		fmt.Fprint(c.Out, prompt)
		if !sc.Scan() {
			return pipeline.Stock{}, false
		}
		stock, ok := c.Registry.Get(strings.ToLower(strings.TrimSpace(sc.Text())))
		if ok {
			return stock, true
		}
		fmt.Fprintln(c.Out, "Invalid option entered")
	}
}

func (c *Console) askDate(sc *bufio.Scanner, stock pipeline.Stock) bool {
	for {
		fmt.Fprintln(c.Out, "Enter the date for the price prediction (MM/DD/YYYY):")
		if !sc.Scan() {
			return false
		}
		pred, err := stock.Predict(strings.TrimSpace(sc.Text()), c.Location)
		var dateErr *forecast.InvalidDateFormatError
		switch {
		case errors.As(err, &dateErr):
			fmt.Fprintln(c.Out, "Incorrect data format, should be MM/DD/YYYY")
			continue
		case err != nil:
			fmt.Fprintf(c.Out, "No prediction available for %s: %v\n", stock.Symbol, err)
		default:
			fmt.Fprintln(c.Out, report.FormatPrediction(pred))
		}
		return true
	}
}
