package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPredictor/internal/pipeline"
	"StockPredictor/internal/regression"
)

func testRegistry() *pipeline.Registry {
	reg := pipeline.NewRegistry()
	reg.Put(pipeline.Stock{Symbol: "facebook", Result: &regression.FitResult{
		Model: regression.LinearModel{Slope: 0, Intercept: 190.5},
	}})
	reg.Put(pipeline.Stock{Symbol: "tesla", Result: &regression.FitResult{
		Model: regression.LinearModel{Slope: 0, Intercept: 345.678},
	}})
	reg.Add("paypal", "http://x/pypl")
	return reg
}

func run(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	c := New(testRegistry(), time.UTC, strings.NewReader(input), &out)
	require.NoError(t, c.Run())
	return out.String()
}

func TestChoicePrompt(t *testing.T) {
	assert.Equal(t, "Choose from facebook, tesla or paypal to predict stock price: ",
		ChoicePrompt([]string{"facebook", "tesla", "paypal"}))
	assert.Equal(t, "Choose from tesla to predict stock price: ", ChoicePrompt([]string{"tesla"}))
}

func TestRun_SinglePrediction(t *testing.T) {
	out := run(t, "tesla\n11/20/2019\nn\n")
	assert.Contains(t, out, "The price prediction for tesla stock at 11/20/2019 is $ 345.68")
	assert.Equal(t, 1, strings.Count(out, "Choose from"))
}

func TestRun_RepromptsOnBadInput(t *testing.T) {
	out := run(t, "nokia\nFacebook\n13/45/2019\n11/20/2019\nn\n")
	assert.Contains(t, out, "Invalid option entered")
	assert.Contains(t, out, "Incorrect data format, should be MM/DD/YYYY")
	assert.Contains(t, out, "The price prediction for facebook stock at 11/20/2019 is $ 190.50")
}

func TestRun_Repeats(t *testing.T) {
	out := run(t, "tesla\n1/2/2020\ny\nfacebook\n01/02/2020\nn\n")
	assert.Equal(t, 2, strings.Count(out, "The price prediction for"))
	assert.Equal(t, 2, strings.Count(out, "Do you want to perform other stock price prediction (y/n)?"))
}

func TestRun_UnfittedStock(t *testing.T) {
	out := run(t, "paypal\n11/20/2019\nn\n")
	assert.Contains(t, out, "No prediction available for paypal")
}

func TestRun_EOF(t *testing.T) {
	out := run(t, "tesla\n")
	assert.Contains(t, out, "Enter the date for the price prediction (MM/DD/YYYY):")
}

func TestRun_UppercaseChoice(t *testing.T) {
	out := run(t, "  TESLA \n11/20/2019\nn\n")
	assert.NotContains(t, out, "Invalid option entered")
	assert.Contains(t, out, "The price prediction for tesla stock at 11/20/2019 is $ 345.68")
}
