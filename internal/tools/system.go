package tools

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

const defaultTimezone = "Asia/Seoul"

// CurrentTimeInput is the argument object for the current_time tool.
type CurrentTimeInput struct {
	Timezone string `json:"timezone,omitempty" jsonschema:"IANA timezone name, e.g. Asia/Seoul, America/New_York, Europe/London"`
}

// CalculateInput is the argument object for the calculate tool.
type CalculateInput struct {
	Expression string `json:"expression" jsonschema:"Arithmetic expression using digits and + - * / ( ), e.g. (2+3)*4"`
}

// SystemTools builds the current_time and calculate tools.
func SystemTools() []Tool {
	return []Tool{
		New("current_time",
			"Get the current date and time in a timezone. Defaults to Asia/Seoul.",
			currentTime),
		New("calculate",
			"Evaluate a basic arithmetic expression. Only digits, + - * / ( ) and decimal points are allowed.",
			calculate),
	}
}

// currentTime reports wall-clock time in the requested zone. An unknown zone
// falls back to the default rather than failing, since the model frequently
// guesses at zone spellings.
func currentTime(_ context.Context, in CurrentTimeInput) (string, error) {
	zone := in.Timezone
	if zone == "" {
		zone = defaultTimezone
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		zone = defaultTimezone
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return "", fmt.Errorf("loading timezone %s: %w", zone, err)
		}
	}

	now := time.Now().In(loc)
	return fmt.Sprintf("%s: %s", zone, now.Format("2006-01-02 15:04:05 MST")), nil
}

var calcCharset = regexp.MustCompile(`^[0-9+\-*/.() ]+$`)

// calculate evaluates a restricted arithmetic expression. The charset check
// mirrors what the expression parser accepts; it exists to give the model a
// clear rejection message for anything fancier.
func calculate(_ context.Context, in CalculateInput) (string, error) {
	expr := in.Expression
	if expr == "" {
		return "", fmt.Errorf("expression is required")
	}
	if !calcCharset.MatchString(expr) {
		return "", fmt.Errorf("expression contains disallowed characters; only digits, + - * / ( ) and spaces are accepted")
	}

	result, err := evalExpression(expr)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s = %s", expr, formatNumber(result)), nil
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
