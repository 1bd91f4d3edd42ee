// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package concore

// RaceEnabled is true when the race detector is active. Tests use it to
// shrink stress runs whose iteration counts would otherwise make the
// race detector's instrumentation overhead dominate the run time.
const RaceEnabled = true
