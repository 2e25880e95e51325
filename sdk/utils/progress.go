// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"os"
	"time"
)

/* ------------ tiny UI helpers for single-line progress ------------ */

// Meter renders a one-line transfer progress on stderr. When the total
// is unknown it falls back to a spinner with a running byte count.
type Meter struct {
	TotalKnown bool
	TotalBytes int64

	doneBytes int64
	spinIdx   int
	lastTick  time.Time
}

var spinner = []rune{'|', '/', '-', '\\'}

func (m *Meter) Add(delta int64) {
	m.doneBytes += delta
}

func human(n int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)
	switch {
	case n >= GB:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(GB))
	case n >= MB:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(MB))
	case n >= KB:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(KB))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func (m *Meter) Render(force bool) {
	// throttling: update ~10 times each seconds to avoid “spamming”
	if !force && time.Since(m.lastTick) < 100*time.Millisecond {
		return
	}
	m.lastTick = time.Now()

	if m.TotalKnown && m.TotalBytes > 0 {
		pct := float64(m.doneBytes) / float64(m.TotalBytes) * 100
		if m.doneBytes > m.TotalBytes {
			m.doneBytes = m.TotalBytes
			pct = 100
		}
		fmt.Fprintf(os.Stderr, "\rProgress: %6.2f%% (%s / %s)   ",
			pct, human(m.doneBytes), human(m.TotalBytes))
	} else {
		ch := spinner[m.spinIdx%len(spinner)]
		m.spinIdx++
		fmt.Fprintf(os.Stderr, "\rProgress: [%c] %s transferred   ", ch, human(m.doneBytes))
	}
}

func (m *Meter) Done() {
	m.Render(true)
	fmt.Fprintln(os.Stderr)
}
