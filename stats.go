package uirender

import "github.com/gogpu/uirender/internal/gpu"

// SlotStats describes one frame-in-flight buffer slot.
type SlotStats = gpu.SlotStats

// Stats is a snapshot of the renderer's resource usage.
type Stats struct {
	// Frames counts Render calls that completed without error,
	// including skipped frames.
	Frames uint64

	// SkippedFrames counts frames with nothing to draw.
	SkippedFrames uint64

	// CurrentFrame is the index of the slot the next frame uses.
	CurrentFrame uint64

	// LastFrame describes the most recent successful Render call.
	LastFrame FrameStats

	Textures        int
	ImageBindGroups int
	Pipelines       int
	Slots           []SlotStats
}
