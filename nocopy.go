// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

// noCopy is embedded in types that must not be copied once in use
// (AtomicWord, the ring engine). It has no runtime effect; `go vet`'s
// copylocks check flags any accidental copy because noCopy implements
// sync.Locker-shaped methods.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
