package analyses

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Output name derivation. All functions are pure and never fail: malformed
// input falls back to a generic name instead of returning an error.

// genericNames are base names too vague to keep when the caller supplies one.
var genericNames = map[string]struct{}{
	"analysis":      {},
	"report":        {},
	"output":        {},
	"result":        {},
	"summary":       {},
	"pr_analysis":   {},
	"pr_report":     {},
	"full_analysis": {},
	"data":          {},
}

var (
	tagCleanRe    = regexp.MustCompile(`[^\w.\-]`)
	moduleCleanRe = regexp.MustCompile(`[^\w\-]`)
)

// PRName derives a descriptive output name for a PR analysis.
// A caller-supplied base name wins unless it is generic. Otherwise the PR
// number decides ("pr123"), then the main module, then "analysis".
func PRName(data map[string]any, baseName string) string {
	if baseName != "" && !IsGenericName(baseName) {
		return baseName
	}

	var prNumber string
	switch v := data["pr_number"].(type) {
	case int:
		prNumber = strconv.Itoa(v)
	case int64:
		prNumber = strconv.FormatInt(v, 10)
	case float64:
		// JSON numbers decode as float64
		prNumber = strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		prNumber = strings.TrimPrefix(v, "#")
	}
	if prNumber != "" {
		return "pr" + prNumber
	}

	if module := MainModule(data); module != "" {
		return module
	}
	return "analysis"
}

// ReleaseName derives an output name for a release analysis.
// The tag is kept as-is apart from stripping anything outside [A-Za-z0-9_.-].
func ReleaseName(repoName, releaseTag, baseName string) string {
	if baseName != "" && !IsGenericName(baseName) {
		return baseName
	}
	cleanTag := tagCleanRe.ReplaceAllString(releaseTag, "")
	return "release-" + cleanTag
}

// BatchName derives an output name for a batch analysis, e.g.
// "unreleased" or "date-range-20240131".
func BatchName(batchType, identifier, baseName string) string {
	if baseName != "" && !IsGenericName(baseName) {
		return baseName
	}
	parts := []string{batchType}
	if identifier != "" {
		parts = append(parts, tagCleanRe.ReplaceAllString(identifier, ""))
	}
	return strings.Join(parts, "-")
}

// IsGenericName reports whether a name is too generic to identify an
// analysis. The extension, if any, is ignored and matching is
// case-insensitive.
func IsGenericName(name string) bool {
	base := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		base = name[:i]
	}
	_, ok := genericNames[strings.ToLower(base)]
	return ok
}

// MainModule resolves the main module/adapter name from extracted module
// data. A single module wins outright; exactly two are joined with a hyphen;
// more than two collapse to "multiple-modules". Returns "" when the data
// carries no usable module information.
func MainModule(data map[string]any) string {
	modulesData, ok := data["modules"].(map[string]any)
	if !ok {
		return ""
	}
	modulesList, ok := modulesData["modules"].([]any)
	if !ok {
		return ""
	}

	switch {
	case len(modulesList) == 1:
		return moduleName(modulesList[0])

	case len(modulesList) > 2:
		return "multiple-modules"

	case len(modulesList) == 2:
		first := moduleName(modulesList[0])
		second := moduleName(modulesList[1])
		if first != "" && second != "" {
			return moduleCleanRe.ReplaceAllString(first, "") + "-" +
				moduleCleanRe.ReplaceAllString(second, "")
		}
		// fallback to first module
		return first
	}
	return ""
}

func moduleName(m any) string {
	switch v := m.(type) {
	case map[string]any:
		name, _ := v["name"].(string)
		return name
	case string:
		return v
	}
	return fmt.Sprint(m)
}
