package utils

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	PayoutTimeLayout = "Mon, 02 Jan 2006 15:04:05 MST"
	ClaimTimeLayout  = "03:04:05 PM"
)

// FormatPayoutTime formats a unix timestamp in the given timezone, e.g. "Sun, 01 Jan 2023 12:00:00 UTC"
func FormatPayoutTime(timestamp int64, loc *time.Location) string {
	return time.Unix(timestamp, 0).In(loc).Format(PayoutTimeLayout)
}

// ParseClaimTime parses the ISO-8601 UTC claim time as returned by the node api
func ParseClaimTime(claimTime string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, claimTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid claim time %q: %w", claimTime, err)
	}
	return ts.UTC(), nil
}

// FormatClaimTime converts an ISO-8601 UTC claim time to the given timezone in 12-hour clock format, e.g. "07:00:00 AM"
func FormatClaimTime(claimTime string, loc *time.Location) (string, error) {
	ts, err := ParseClaimTime(claimTime)
	if err != nil {
		return "", err
	}
	return ts.In(loc).Format(ClaimTimeLayout), nil
}

// CeilAmount rounds an amount up to the next integer
func CeilAmount(amount decimal.Decimal) int64 {
	return amount.Ceil().IntPart()
}

// RoundAmount rounds an amount half away from zero to the given number of decimal places
func RoundAmount(amount decimal.Decimal, places int32) string {
	return amount.Round(places).String()
}

func FormatFloat(num float64, precision int) string {
	p := message.NewPrinter(language.English)
	f := fmt.Sprintf("%%.%vf", precision)
	s := p.Sprintf(f, num)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// FormatMetricValue formats a decoded json value for display
func FormatMetricValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case json.Number:
		num, err := decimal.NewFromString(v.String())
		if err != nil {
			return v.String()
		}
		return FormatFloat(num.Round(4).InexactFloat64(), 4)
	case float64:
		return FormatFloat(v, 4)
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// FormatMetricLabel turns a json key into a readable label, e.g. "claimPercentage" -> "Claim Percentage"
func FormatMetricLabel(key string) string {
	var sb strings.Builder
	runes := []rune(key)
	upperNext := true
	for i, r := range runes {
		switch {
		case r == '_' || r == '.':
			if r == '.' {
				sb.WriteString(" /")
			}
			sb.WriteRune(' ')
			upperNext = true
			continue
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]):
			sb.WriteRune(' ')
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// FormatNodeStatus renders the node status badge
func FormatNodeStatus(ok bool) template.HTML {
	if ok {
		return template.HTML("<span class=\"badge rounded-pill text-bg-success\">OK</span>")
	}
	return template.HTML("<span class=\"badge rounded-pill text-bg-danger\">NO</span>")
}

func FormatAddCommas(n int64) template.HTML {
	p := message.NewPrinter(language.English)
	return template.HTML(p.Sprintf("%d", n))
}
