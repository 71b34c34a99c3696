package analyze

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-risk/internal/catalog"
	"github.com/inodb/vibe-risk/internal/detect"
)

func makeInputs(n int) []*Input {
	inputs := make([]*Input, n)
	for i := 0; i < n; i++ {
		inputs[i] = NewInput(fmt.Sprintf("sample%d.txt", i), []byte(fmt.Sprintf("line %d\nBRCA1\n", i)))
	}
	return inputs
}

func TestParallelAnalyze_OrderPreservation(t *testing.T) {
	o := NewOrchestrator(detect.NewDetector(catalog.Default()), nil)

	results := o.ParallelAnalyze(context.Background(), Feed(makeInputs(100)), 8)

	var collected []int
	err := OrderedCollect(results, func(r WorkResult) error {
		require.NoError(t, r.Err)
		require.NotNil(t, r.Result())
		assert.Equal(t, fmt.Sprintf("sample%d.txt", r.Seq), r.Input.Name)
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 100)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestParallelAnalyze_SingleWorker(t *testing.T) {
	o := NewOrchestrator(detect.NewDetector(catalog.Default()), nil)

	results := o.ParallelAnalyze(context.Background(), Feed(makeInputs(20)), 1)

	n := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		assert.Equal(t, n, r.Seq)
		assert.Equal(t, 2, r.Result().TotalAnalyzed)
		n++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestParallelAnalyze_ErrorsPerItem(t *testing.T) {
	o := NewOrchestrator(detect.NewDetector(catalog.Default()), nil)
	inputs := []*Input{NewInput("a", []byte("x")), nil, NewInput("c", []byte("y"))}

	var errs []error
	err := OrderedCollect(o.ParallelAnalyze(context.Background(), Feed(inputs), 2), func(r WorkResult) error {
		errs = append(errs, r.Err)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], ErrNoInput)
	assert.NoError(t, errs[2])
}

func TestOrderedCollect_StopsOnError(t *testing.T) {
	o := NewOrchestrator(detect.NewDetector(catalog.Default()), nil)
	stop := errors.New("stop")

	calls := 0
	err := OrderedCollect(o.ParallelAnalyze(context.Background(), Feed(makeInputs(50)), 4), func(r WorkResult) error {
		calls++
		if r.Seq == 5 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 6, calls)
}
