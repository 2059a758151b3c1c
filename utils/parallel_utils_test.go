package utils

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Test PartitionMap
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				k1, k2 := pm.GetBucketRange(np)
				histo[k2-k1]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 10000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Test inverted bucket probe - find bucket that contains index (efficiently)
		for maxIndex := 10; maxIndex < 1000; maxIndex++ {
			pm := NewPartitionMap(5, maxIndex)
			for k := 0; k < maxIndex; k++ {
				tryCount, bn, min, max := pm.getBucketWithTryCount(k)
				mmin, mmax := pm.GetBucketRange(bn)
				assert.True(t, k >= min && k < max && min == mmin && max == mmax && tryCount <= 1)
			}
		}
	}
}

func TestPartitionMapIdleBuckets(t *testing.T) {
	// More units than boxes leaves trailing buckets empty
	pm := NewPartitionMap(4, 2)
	for bn, want := range []int{1, 1, 0, 0} {
		k1, k2 := pm.GetBucketRange(bn)
		assert.Equal(t, want, k2-k1)
	}
	bn, _, _ := pm.GetBucket(1)
	assert.Equal(t, 1, bn)
	bn, _, _ = pm.GetBucket(2)
	assert.Equal(t, -1, bn)
	k, kMax, _ := pm.GetLocalK(1)
	assert.Equal(t, 0, k)
	assert.Equal(t, 1, kMax)
	assert.Equal(t, 1, NewPartitionMap(0, 5).ParallelDegree)
}

func TestMailBox(t *testing.T) {
	const NP = 8
	mb := NewMailBox[int](NP)
	var wg sync.WaitGroup
	wg.Add(NP)
	for n := 0; n < NP; n++ {
		go func(n int) {
			defer wg.Done()
			for i := 0; i <= n; i++ {
				mb.PostMessage(n, 0, n)
			}
			mb.DeliverMyMessages(n)
		}(n)
	}
	wg.Wait()
	mb.ReceiveMyMessages(0)
	got := mb.ReceiveMsgQs[0].Cells()
	assert.Equal(t, NP*(NP+1)/2, len(got))
	counts := make(map[int]int)
	for _, v := range got {
		counts[v]++
	}
	for n := 0; n < NP; n++ {
		assert.Equal(t, n+1, counts[n])
	}
	mb.ClearMyMessages(0)
	assert.Equal(t, 0, mb.ReceiveMsgQs[0].Len())

	assert.Panics(t, func() { mb.PostMessage(0, NP, 1) })
}
