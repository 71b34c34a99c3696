package catalog

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeTSV(t *testing.T, sigs []Signature) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("gene\tchrom\tpos\tref\talt\tcondition\tpathogenicity\n")
	for _, s := range sigs {
		b.WriteString(strings.Join([]string{
			s.Gene, s.Chrom, strconv.FormatInt(s.Pos, 10), s.Ref, s.Alt, s.Condition,
			strconv.FormatFloat(s.BasePathogenicity, 'g', -1, 64),
		}, "\t"))
		b.WriteString("\n")
	}
	path := filepath.Join(t.TempDir(), "signatures.tsv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func TestStore_WriteAndRead(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.Write(builtinSignatures))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(len(builtinSignatures)), n)

	sigs, err := s.Signatures()
	require.NoError(t, err)
	assert.Equal(t, builtinSignatures, sigs)
}

func TestStore_WriteEmpty(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.Write(nil))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_ImportTSV(t *testing.T) {
	s := openInMemory(t)
	path := writeTSV(t, builtinSignatures)

	n, err := s.ImportTSV(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(builtinSignatures)), n)

	sigs, err := s.Signatures()
	require.NoError(t, err)
	require.Len(t, sigs, len(builtinSignatures))
	assert.Equal(t, "HTT", sigs[4].Gene)
	assert.Equal(t, "(CAG)36+", sigs[4].Alt)
	assert.Equal(t, ConditionHuntington, sigs[4].Condition)

	// Re-import replaces rather than appends.
	_, err = s.ImportTSV(path)
	require.NoError(t, err)
	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(len(builtinSignatures)), count)
}

func TestStore_ImportTSVFailureKeepsCatalog(t *testing.T) {
	tests := []struct {
		name string
		tsv  func(t *testing.T) string
	}{
		{"non-numeric position", func(t *testing.T) string {
			path := filepath.Join(t.TempDir(), "bad.tsv")
			content := "gene\tchrom\tpos\tref\talt\tcondition\tpathogenicity\n" +
				"BRCA1\t17\tnot-a-number\tG\tA\t" + ConditionHBOC + "\t0.95\n"
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			return path
		}},
		{"missing index conditions", func(t *testing.T) string {
			return writeTSV(t, builtinSignatures[:2])
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openInMemory(t)
			require.NoError(t, s.Write(builtinSignatures))

			_, err := s.ImportTSV(tt.tsv(t))
			require.Error(t, err)

			n, err := s.Count()
			require.NoError(t, err)
			assert.Equal(t, int64(len(builtinSignatures)), n)

			sigs, err := s.Signatures()
			require.NoError(t, err)
			assert.Equal(t, builtinSignatures, sigs)
		})
	}
}

func TestStore_ImportTSVMissingFile(t *testing.T) {
	s := openInMemory(t)
	_, err := s.ImportTSV("/nonexistent/signatures.tsv")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses builtin", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Same(t, Default(), c)
	})

	t.Run("from duckdb file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "catalog.duckdb")
		s, err := Open(dbPath)
		require.NoError(t, err)
		require.NoError(t, s.Write(builtinSignatures))
		require.NoError(t, s.Close())

		c, err := Load(dbPath)
		require.NoError(t, err)
		assert.Equal(t, len(builtinSignatures), c.Len())
	})

	t.Run("invalid catalog is rejected", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "broken.duckdb")
		s, err := Open(dbPath)
		require.NoError(t, err)
		require.NoError(t, s.Write(builtinSignatures[:2]))
		require.NoError(t, s.Close())

		_, err = Load(dbPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing index conditions")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.duckdb"))
		assert.Error(t, err)
	})
}
