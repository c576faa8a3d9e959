// Package filex contains file-name helpers shared by the storage backends and
// the container service.
package filex

import (
	"fmt"
	"path"
	"strings"

	"github.com/dmitrijs2005/containerhub/internal/common"
)

// SanitizeFileName reduces a client supplied upload name to its base name.
// Both slash styles are treated as separators so a Windows path sent by a
// browser does not leak directories into the namespace. Names carrying the
// storage temp prefix are rejected since listings would never show them.
func SanitizeFileName(name string) (string, error) {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	base := path.Base(name)
	if base == "" || base == "." || base == ".." || base == "/" {
		return "", fmt.Errorf("%w: empty file name", common.ErrorInvalidInput)
	}
	if strings.HasPrefix(base, common.TempFilePrefix) {
		return "", fmt.Errorf("%w: reserved file name %q", common.ErrorInvalidInput, base)
	}
	return base, nil
}

// AnalysisName returns the name of the analysis artifact derived from an
// uploaded file: "dir/report.csv" becomes "dir/report_analysis.txt". Names
// that already are analysis artifacts are returned unchanged.
func AnalysisName(filePath string) string {
	if strings.HasSuffix(filePath, common.AnalysisSuffix) {
		return filePath
	}
	ext := path.Ext(filePath)
	return strings.TrimSuffix(filePath, ext) + common.AnalysisSuffix
}

// CleanRelative validates a path relative to a user namespace and returns it
// in canonical slash form. Absolute paths and paths climbing out of the
// namespace are rejected.
func CleanRelative(rel string) (string, error) {
	rel = strings.ReplaceAll(rel, `\`, "/")
	if rel == "" || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: bad relative path %q", common.ErrorInvalidInput, rel)
	}
	cleaned := path.Clean(rel)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: bad relative path %q", common.ErrorInvalidInput, rel)
	}
	return cleaned, nil
}
