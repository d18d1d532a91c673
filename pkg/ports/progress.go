package ports

// Progress receives per-frame progress from a long-running stage.
type Progress interface {
	// Start is called once the total is known. total is 0 when the
	// backend cannot tell how many frames to expect.
	Start(total int)

	// Advance reports that one more frame was handled, written or skipped.
	Advance()

	// Finish is called when the stage stops, successfully or not.
	Finish()
}
