package repofakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/agro-console/sessions"
)

var _ sessions.Storage = (*FakeStorage)(nil)

// FakeStorage is an in-memory sessions.Storage. Errors can be injected per key
// to exercise the Store's failure paths.
type FakeStorage struct {
	values   map[string]string
	setErrs  map[string]error
	getErrs  map[string]error
	setCalls int
	lock     sync.RWMutex
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		values:  make(map[string]string),
		setErrs: make(map[string]error),
		getErrs: make(map[string]error),
	}
}

func (fs *FakeStorage) Get(_ context.Context, key string) (string, bool, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	if err := fs.getErrs[key]; err != nil {
		return "", false, err
	}
	v, ok := fs.values[key]
	return v, ok, nil
}

func (fs *FakeStorage) Set(_ context.Context, key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.setCalls++
	if err := fs.setErrs[key]; err != nil {
		return err
	}
	fs.values[key] = value
	return nil
}

func (fs *FakeStorage) Remove(_ context.Context, key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	delete(fs.values, key)
	return nil
}

// FailSet makes every Set of key return err. A nil err clears the fault.
func (fs *FakeStorage) FailSet(key string, err error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if err == nil {
		delete(fs.setErrs, key)
		return
	}
	fs.setErrs[key] = err
}

// FailGet makes every Get of key return err. A nil err clears the fault.
func (fs *FakeStorage) FailGet(key string, err error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if err == nil {
		delete(fs.getErrs, key)
		return
	}
	fs.getErrs[key] = err
}

// Snapshot returns a copy of the stored values.
func (fs *FakeStorage) Snapshot() map[string]string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	out := make(map[string]string, len(fs.values))
	for k, v := range fs.values {
		out[k] = v
	}
	return out
}

// SetCalls counts Set invocations, failed ones included.
func (fs *FakeStorage) SetCalls() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.setCalls
}
