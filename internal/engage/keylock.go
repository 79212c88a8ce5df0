package engage

import (
	"hash/fnv"
	"sort"
	"sync"
)

const lockShards = 512

// keyLock serializes mutations per natural key (actor+target+kind for
// toggles, orderId for transitions, accountId for balances) without a global
// lock. Keys hash onto a fixed set of shard mutexes; unrelated keys proceed
// in parallel except for the rare shard collision, which only costs waiting.
type keyLock struct {
	shards [lockShards]sync.Mutex
}

func newKeyLock() *keyLock {
	return &keyLock{}
}

func (l *keyLock) shard(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % lockShards)
}

// Lock acquires the shard for key and returns its release function
func (l *keyLock) Lock(key string) func() {
	i := l.shard(key)
	l.shards[i].Lock()
	return l.shards[i].Unlock
}

// LockMany acquires the shards for all keys in ascending shard order, so two
// callers locking overlapping key sets can never deadlock. Duplicate shards
// are locked once.
func (l *keyLock) LockMany(keys ...string) func() {
	seen := make(map[int]bool, len(keys))
	idxs := make([]int, 0, len(keys))
	for _, key := range keys {
		i := l.shard(key)
		if !seen[i] {
			seen[i] = true
			idxs = append(idxs, i)
		}
	}
	sort.Ints(idxs)

	for _, i := range idxs {
		l.shards[i].Lock()
	}
	return func() {
		for j := len(idxs) - 1; j >= 0; j-- {
			l.shards[idxs[j]].Unlock()
		}
	}
}

func toggleLockKey(actorID, targetID string, kind string) string {
	return "toggle:" + actorID + "|" + targetID + "|" + kind
}

func accountLockKey(accountID string) string {
	return "account:" + accountID
}

func orderLockKey(orderID string) string {
	return "order:" + orderID
}
