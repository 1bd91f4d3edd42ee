// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

// pad is cache line padding to prevent false sharing between the ring
// engine's independently-contended counters (tail/head/threshold).
type pad [64]byte

// padShort pads a slot out to a cache line after its 8-byte cycle tag.
type padShort [64 - 8]byte
