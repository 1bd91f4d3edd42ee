// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

// Option configures a [ThreadManager] at construction time. This is the
// functional-options generalisation of the teacher package's fluent
// Builder (lfq.New(capacity).SingleProducer()...): a thread manager has
// no producer/consumer-count algorithm choice to make, so the knobs
// left are resource related rather than algorithmic.
type Option func(*threadManagerConfig)

type threadManagerConfig struct {
	resource MemoryResource
}

func newThreadManagerConfig() *threadManagerConfig {
	return &threadManagerConfig{resource: DefaultMemoryResource{}}
}

// WithMemoryResource sets the [MemoryResource] the manager stores and
// returns from [ThreadManager.Resource]. The default is
// [DefaultMemoryResource]. The task queue's backing storage does not
// allocate through it; it is an ordinary Go slice.
func WithMemoryResource(resource MemoryResource) Option {
	return func(c *threadManagerConfig) {
		if resource != nil {
			c.resource = resource
		}
	}
}
