package utils

func Float32ToInt16(x float32) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Use 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

func Float32ToInt32(x float32) int32 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	return int32(float64(x) * 2147483647.0)
}

// Float32ToInt24 returns a 24-bit sample in the low three bytes of an int32.
func Float32ToInt24(x float32) int32 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	return int32(x * 8388607.0)
}

// Float32ToUint8 converts to the unsigned 8-bit PCM domain centered at 128.
func Float32ToUint8(x float32) uint8 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	return uint8(x*127.0 + 128.0)
}
