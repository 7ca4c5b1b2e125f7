package kvfake

import (
	"sync"

	"github.com/jrsteele09/go-crm/credentials"
)

var _ credentials.KV = (*FakeKV)(nil)

// FakeKV is an in-memory credentials.KV. Errors can be injected per key and
// operation to simulate quota or corruption failures.
type FakeKV struct {
	values  map[string]string
	setErrs map[string]error
	getErrs map[string]error
	lock    sync.RWMutex
}

func NewFakeKV() *FakeKV {
	return &FakeKV{
		values:  make(map[string]string),
		setErrs: make(map[string]error),
		getErrs: make(map[string]error),
	}
}

func (kv *FakeKV) Get(key string) (string, bool, error) {
	kv.lock.RLock()
	defer kv.lock.RUnlock()

	if err := kv.getErrs[key]; err != nil {
		return "", false, err
	}
	value, ok := kv.values[key]
	return value, ok, nil
}

func (kv *FakeKV) Set(key, value string) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	if err := kv.setErrs[key]; err != nil {
		return err
	}
	kv.values[key] = value
	return nil
}

func (kv *FakeKV) Remove(key string) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	delete(kv.values, key)
	return nil
}

// FailSet makes every Set of key return err. A nil err clears the failure.
func (kv *FakeKV) FailSet(key string, err error) {
	kv.lock.Lock()
	defer kv.lock.Unlock()
	kv.setErrs[key] = err
}

// FailGet makes every Get of key return err. A nil err clears the failure.
func (kv *FakeKV) FailGet(key string, err error) {
	kv.lock.Lock()
	defer kv.lock.Unlock()
	kv.getErrs[key] = err
}

// Len returns the number of stored entries.
func (kv *FakeKV) Len() int {
	kv.lock.RLock()
	defer kv.lock.RUnlock()
	return len(kv.values)
}
