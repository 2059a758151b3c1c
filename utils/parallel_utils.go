package utils

import "fmt"

// MailBox routes messages between a fixed set of execution units. Each unit
// posts into its own outboxes, delivers them, and the target unit drains
// its channel into its receive queue.
type MailBox[T any] struct {
	NP           int
	MessageChans []chan *DynBuffer[T]    // One for each unit
	PostMsgQs    []map[int]*DynBuffer[T] // One for each unit, key is target unit
	ReceiveMsgQs []*DynBuffer[T]         // One for each unit
	MailFlag     []bool                  // Unit has undelivered messages in its outbox
}

func NewMailBox[T any](NP int) *MailBox[T] {
	mb := &MailBox[T]{
		NP:           NP,
		MessageChans: make([]chan *DynBuffer[T], NP),
		PostMsgQs:    make([]map[int]*DynBuffer[T], NP),
		ReceiveMsgQs: make([]*DynBuffer[T], NP),
		MailFlag:     make([]bool, NP),
	}
	for n := 0; n < NP; n++ {
		mb.MessageChans[n] = make(chan *DynBuffer[T], NP) // Worst case is all-to-all
		mb.PostMsgQs[n] = make(map[int]*DynBuffer[T])
		mb.ReceiveMsgQs[n] = NewDynBuffer[T](0)
	}
	return mb
}

func (mb *MailBox[T]) PostMessage(myUnit, targetUnit int, msg T) {
	if targetUnit < 0 || targetUnit > mb.NP-1 {
		panic(fmt.Sprintf("Target unit %d out of bounds", targetUnit))
	}
	tgt, exists := mb.PostMsgQs[myUnit][targetUnit]
	if !exists {
		tgt = NewDynBuffer[T](0)
		mb.PostMsgQs[myUnit][targetUnit] = tgt
	}
	tgt.Add(msg)
	mb.MailFlag[myUnit] = true
}

// DeliverMyMessages pushes every non-empty outbox of myUnit to its target.
func (mb *MailBox[T]) DeliverMyMessages(myUnit int) {
	if !mb.MailFlag[myUnit] {
		return
	}
	for targetUnit, msgBuffer := range mb.PostMsgQs[myUnit] {
		if msgBuffer.Len() == 0 {
			continue
		}
		mb.MessageChans[targetUnit] <- msgBuffer
	}
	mb.MailFlag[myUnit] = false
}

// ReceiveMyMessages drains everything delivered to myUnit so far. The
// originating outboxes are reset so they can be reused for the next round.
func (mb *MailBox[T]) ReceiveMyMessages(myUnit int) {
	for {
		select {
		case msgBuffer := <-mb.MessageChans[myUnit]:
			for _, msg := range msgBuffer.Cells() {
				mb.ReceiveMsgQs[myUnit].Add(msg)
			}
			msgBuffer.Reset()
		default:
			return
		}
	}
}

func (mb *MailBox[T]) ClearMyMessages(myUnit int) {
	mb.ReceiveMsgQs[myUnit].Reset()
}

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree < 1 {
		ParallelDegree = 1
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucket(k int) (bucketNum, min, max int) {
	_, bucketNum, min, max = pm.getBucketWithTryCount(k)
	return
}

func (pm *PartitionMap) getBucketWithTryCount(k int) (tryCount, bucketNum, min, max int) {
	if k < 0 || k >= pm.MaxIndex {
		return 0, -1, 0, 0
	}
	// Initial guess
	bucketNum = int(float64(pm.ParallelDegree*k) / float64(pm.MaxIndex))
	for !(pm.Partitions[bucketNum][0] <= k && pm.Partitions[bucketNum][1] > k) {
		if pm.Partitions[bucketNum][0] > k {
			bucketNum--
		} else {
			bucketNum++
		}
		if bucketNum == -1 || bucketNum == pm.ParallelDegree {
			return 0, -1, 0, 0
		}
		tryCount++
	}
	min, max = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetLocalK(baseK int) (k, Kmax, bn int) {
	var (
		kmin, kmax int
	)
	bn, kmin, kmax = pm.GetBucket(baseK)
	Kmax = kmax - kmin
	k = baseK - kmin
	return
}

func (pm *PartitionMap) Split1D(unit int) (bucket [2]int) {
	// Splits one dimension into ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if unit+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = unit
			endAdd = 1
		}
	}
	bucket[0] = unit*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}
