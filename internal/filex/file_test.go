package filex

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "report.csv", want: "report.csv"},
		{in: "  report.csv ", want: "report.csv"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\alice\report.csv`, want: "report.csv"},
		{in: "dir/", want: "dir"},
		{in: "", wantErr: true},
		{in: "..", wantErr: true},
		{in: "/", wantErr: true},
		{in: ".tmp-report.csv", wantErr: true},
		{in: "dir/.tmp-x", wantErr: true},
		{in: "report.tmp-1.csv", want: "report.tmp-1.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SanitizeFileName(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrorInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalysisName(t *testing.T) {
	assert.Equal(t, "report_analysis.txt", AnalysisName("report.csv"))
	assert.Equal(t, "data_analysis.txt", AnalysisName("data"))
	assert.Equal(t, "a.b_analysis.txt", AnalysisName("a.b.c"))
	assert.Equal(t, "x/report_analysis.txt", AnalysisName("x/report.csv"))
	assert.Equal(t, "report_analysis.txt", AnalysisName("report_analysis.txt"))
}

func TestCleanRelative(t *testing.T) {
	ok := map[string]string{
		"report.csv":      "report.csv",
		"a/./b.txt":       "a/b.txt",
		`sub\file.txt`:    "sub/file.txt",
		"a/../report.csv": "report.csv",
	}
	for in, want := range ok {
		got, err := CleanRelative(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "/etc/passwd", "..", "../x", "a/../../x", "."} {
		_, err := CleanRelative(bad)
		assert.ErrorIs(t, err, common.ErrorInvalidInput, bad)
	}
}
