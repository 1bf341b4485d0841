package analysis

import (
	"go/build"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The analysis core must build and test without OpenCV.
func TestImports_NoOpenCV(t *testing.T) {
	for _, dir := range []string{".", "../pose"} {
		pkg, err := build.ImportDir(dir, 0)
		require.NoError(t, err, dir)

		imports := append(append([]string{}, pkg.Imports...), pkg.TestImports...)
		for _, imp := range imports {
			assert.False(t, strings.HasPrefix(imp, "gocv.io/"), "%s imports %s", dir, imp)
			if strings.HasPrefix(imp, "github.com/ayusman/trainiq/") {
				assert.Equal(t, "github.com/ayusman/trainiq/internal/pose", imp, "%s imports %s", dir, imp)
			}
		}
	}
}
