package utils

import (
	"html/template"
	"strings"

	"github.com/Masterminds/sprig/v3"
)

// GetTemplateFuncs will get the template functions
func GetTemplateFuncs() template.FuncMap {
	fm := template.FuncMap{}

	for k, v := range sprig.FuncMap() {
		fm[k] = v
	}

	customFuncs := template.FuncMap{
		"html":              func(x string) template.HTML { return template.HTML(x) },
		"sub":               func(i, j int) int { return i - j },
		"add":               func(i, j int) int { return i + j },
		"contains":          strings.Contains,
		"tokenSymbol":       tokenSymbol,
		"formatAddCommas":   FormatAddCommas,
		"formatFloat":       FormatFloat,
		"formatNodeStatus":  FormatNodeStatus,
		"formatMetricLabel": FormatMetricLabel,
	}

	for k, v := range customFuncs {
		fm[k] = v
	}

	return fm
}

func tokenSymbol() string {
	if Config == nil || Config.Frontend.TokenSymbol == "" {
		return "DATA"
	}
	return Config.Frontend.TokenSymbol
}
