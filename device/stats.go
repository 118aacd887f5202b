// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import "fmt"

// Stats contains device counters.
type Stats struct {
	// Epoch is the current context epoch.
	Epoch uint64

	// Tick is the current frame tick.
	Tick uint64

	// DrawCalls is the number of draws issued since BeginFrame.
	DrawCalls int

	// DroppedDraws is the total number of draws dropped while the context
	// was lost.
	DroppedDraws int

	// Uploads is the total number of texture pixel uploads.
	Uploads int

	// Evictions is the total number of garbage-collected GPU textures.
	Evictions int

	// ResidentTextures is the number of textures with a current-epoch GPU
	// copy.
	ResidentTextures int

	// ResidentBytes is the size of those GPU copies.
	ResidentBytes int
}

// String returns a human-readable string of device stats.
func (s Stats) String() string {
	return fmt.Sprintf("Device[epoch %d, tick %d, %d draws, %d textures, %d KB, %d uploads, %d evictions]",
		s.Epoch,
		s.Tick,
		s.DrawCalls,
		s.ResidentTextures,
		s.ResidentBytes/1024,
		s.Uploads,
		s.Evictions)
}
