package textmesh

// BufferView is a window over an assembler's accumulated geometry,
// ready for upload to a GPU vertex buffer.
type BufferView struct {
	// Vertices holds VertexCount packed vertices of 4 floats each:
	// x, y, u, v.
	Vertices []float32

	// VertexCount is the number of vertices in Vertices.
	VertexCount int

	// Indices holds IndexCount triangle-list indices into Vertices.
	// Nil unless the assembler has CreateIndexBuffer set.
	Indices []uint32

	// IndexCount is the number of indices in Indices.
	IndexCount int
}

// GrabBuffer returns a view of the geometry accumulated so far.
//
// The view aliases the assembler's storage rather than copying it.
// Reusing the assembler after ClearBuffer overwrites the viewed memory,
// so copy the slices first if the geometry must outlive the frame.
func (a *Assembler) GrabBuffer() BufferView {
	view := BufferView{
		Vertices:    a.verts[:a.vertexCount*vertexStride],
		VertexCount: a.vertexCount,
	}
	if a.flags&CreateIndexBuffer != 0 {
		view.Indices = a.indices[:a.indexCount]
		view.IndexCount = a.indexCount
	}
	return view
}
