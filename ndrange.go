package sylk

// Dim3 represents 3D dimensions for grid and work-group configurations.
type Dim3 struct {
	X, Y, Z int
}

// Size returns the total number of elements
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

// Dim1 returns a 1-D dimension of extent n. The Y and Z extents are 1,
// so Size equals n.
func Dim1(n int) Dim3 {
	return Dim3{X: n, Y: 1, Z: 1}
}

// WorkItem identifies one work-item's position within the execution
// hierarchy: its group index within the grid, its local index within
// the group, and the dimensions of both.
type WorkItem struct {
	Group    Dim3 // Group index within the grid
	Local    Dim3 // Item index within the group
	GroupDim Dim3 // Dimensions of the group
	GridDim  Dim3 // Dimensions of the grid

	barrier *Barrier
}

// Global returns the global linear index along X
func (w WorkItem) Global() int {
	return w.Group.X*w.GroupDim.X + w.Local.X
}

// GlobalX returns the global X index
func (w WorkItem) GlobalX() int {
	return w.Group.X*w.GroupDim.X + w.Local.X
}

// GlobalY returns the global Y index
func (w WorkItem) GlobalY() int {
	return w.Group.Y*w.GroupDim.Y + w.Local.Y
}

// GlobalZ returns the global Z index
func (w WorkItem) GlobalZ() int {
	return w.Group.Z*w.GroupDim.Z + w.Local.Z
}

// LocalID returns the linear index of this item within its group.
func (w WorkItem) LocalID() int {
	return (w.Local.Z*w.GroupDim.Y+w.Local.Y)*w.GroupDim.X + w.Local.X
}

// GroupID returns the linear index of this item's group within the grid.
func (w WorkItem) GroupID() int {
	return (w.Group.Z*w.GridDim.Y+w.Group.Y)*w.GridDim.X + w.Group.X
}

// Barrier blocks until every work-item in this item's group has reached
// the same rendezvous. All items of the group must call it the same
// number of times.
func (w WorkItem) Barrier() {
	w.barrier.Wait()
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}
