package detect

import (
	"bytes"
	"compress/gzip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Format
	}{
		{"vcf header", "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\n", FormatVCF},
		{"vcf column header", "#CHROM\tPOS\tID\tREF\tALT\n17\t43124096\t.\tG\tA\n", FormatVCF},
		{"headerless vcf", "chr17\t43124096\t.\tG\tA\t50\n", FormatVCF},
		{"headerless vcf chrX", "X\t100\t.\tG\tA\n", FormatVCF},
		{"fasta", ">seq1\nACGTACGT\n", FormatFASTA},
		{"fastq", "@read1\nACGT\n+\nIIII\n", FormatFASTQ},
		{"raw dna", "ACGT NNNN\nacgt\n", FormatRawDNA},
		{"free text", "patient notes: BRCA1 positive", FormatUnknown},
		{"empty", "   ", FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.content))
		})
	}
}

func TestHasAcceptedExtension(t *testing.T) {
	assert.True(t, HasAcceptedExtension("sample.VCF"))
	assert.True(t, HasAcceptedExtension("reads.fastq"))
	assert.True(t, HasAcceptedExtension("sample.vcf.gz"))
	assert.False(t, HasAcceptedExtension("notes.txt"))
}

func TestDecode_Plain(t *testing.T) {
	assert.Equal(t, "BRCA1", Decode([]byte("BRCA1")))
}

func TestDecode_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("17\t43124096\t.\tG\tA\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	assert.Equal(t, "17\t43124096\t.\tG\tA\n", Decode(buf.Bytes()))
}

func TestDecode_BrokenGzipFallsBackToRaw(t *testing.T) {
	data := []byte{0x1f, 0x8b, 'B', 'R', 'C', 'A'}
	out := Decode(data)
	assert.Contains(t, out, "BRCA")
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecodeLimit(t *testing.T) {
	t.Run("within limit", func(t *testing.T) {
		plain := []byte("17\t43124096\t.\tG\tA\n")
		text, err := DecodeLimit(gzipBytes(t, plain), int64(len(plain)))
		require.NoError(t, err)
		assert.Equal(t, string(plain), text)
	})

	t.Run("expansion past limit falls back to raw", func(t *testing.T) {
		compressed := gzipBytes(t, make([]byte, 1<<20))
		text, err := DecodeLimit(compressed, 4096)
		assert.ErrorIs(t, err, ErrDecodedTooLarge)
		assert.Less(t, len(text), 1<<20)
		assert.Equal(t, strings.ToValidUTF8(string(compressed), "\uFFFD"), text)
	})

	t.Run("non-positive limit uses default", func(t *testing.T) {
		text, err := DecodeLimit(gzipBytes(t, []byte("BRCA1")), 0)
		require.NoError(t, err)
		assert.Equal(t, "BRCA1", text)
	})
}

func TestDecode_InvalidUTF8(t *testing.T) {
	out := Decode([]byte{'A', 0xff, 'C'})
	assert.Equal(t, "A�C", out)
}
