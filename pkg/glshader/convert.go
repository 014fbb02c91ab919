package glshader

// Bool converts a GLSL bool to the int32 GL uploads it as.
func Bool(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Bools converts bool lanes to int32 lanes.
func Bools(v []bool) []int32 {
	out := make([]int32, len(v))
	for i, b := range v {
		out[i] = Bool(b)
	}
	return out
}

// Count clamps the number of uploaded elements to the declared array
// length.
func Count(n, declared int) int32 {
	if n > declared {
		n = declared
	}
	return int32(n)
}
